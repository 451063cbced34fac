package purchase

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"barkeep/models"
)

var (
	invoiceNumberPattern = regexp.MustCompile(`(?i)invoice\s*(?:number|no\.?|#)?\s*[:.]?\s*([A-Z0-9][A-Z0-9/-]{2,})`)
	invoiceTotalPattern  = regexp.MustCompile(`(?i)(?:grand\s+total|total\s+(?:amount|due)|amount\s+due|total)\s*[:.]?\s*(?:[A-Z]{3}\s*)?([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
)

// ParseInvoice scans an uploaded supplier invoice PDF for an invoice number
// and a total value. Extraction is best effort: a scanned or oddly laid out
// PDF yields empty fields, not an error, so the caller can fall back to
// manual entry. Errors are reserved for unreadable files.
func ParseInvoice(data []byte) (models.SupplierInvoice, error) {
	text, err := extractText(data)
	if err != nil {
		return models.SupplierInvoice{}, err
	}
	return scanInvoiceText(text), nil
}

func scanInvoiceText(text string) models.SupplierInvoice {
	var invoice models.SupplierInvoice

	if m := invoiceNumberPattern.FindStringSubmatch(text); len(m) > 1 {
		invoice.Number = strings.TrimSpace(m[1])
	}

	// The last total-looking figure wins: invoices list line totals first
	// and the grand total at the bottom.
	for _, m := range invoiceTotalPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		invoice.Value = value
	}

	return invoice
}

func extractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
