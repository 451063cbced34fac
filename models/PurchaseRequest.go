package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"barkeep/internal/money"
)

// SupplierInvoice holds the invoice recorded for one supplier of a purchase
// request.
type SupplierInvoice struct {
	Number string  `json:"invoice_number"`
	Value  float64 `json:"invoice_value"`
}

// PurchaseRequest groups ordered items and tracks fulfillment per supplier.
// The three supplier maps are typed JSON columns keyed by supplier name; the
// overall status is never stored and is always derived from the status map.
type PurchaseRequest struct {
	gorm.Model
	OrderNumber  string    `gorm:"uniqueIndex;not null" json:"order_number"`
	OrderedDate  time.Time `gorm:"not null" json:"ordered_date"`
	Status       string    `gorm:"type:varchar(30);default:Pending" json:"status"`
	Organisation string    `gorm:"type:varchar(200)" json:"organisation"`
	CreatedBy    uint      `gorm:"not null" json:"created_by"`

	SupplierStatuses      datatypes.JSONType[map[string]string]          `json:"supplier_statuses"`
	SupplierInvoices      datatypes.JSONType[map[string]SupplierInvoice] `json:"supplier_invoices"`
	SupplierReceivedDates datatypes.JSONType[map[string]string]          `json:"supplier_received_dates"`

	Items []PurchaseItem `gorm:"foreignKey:PurchaseRequestID;constraint:OnDelete:CASCADE" json:"items"`
}

// StatusForSupplier returns the tracked status for one supplier, falling
// back to the request's stored top-level status when none was recorded yet.
func (pr *PurchaseRequest) StatusForSupplier(supplier string) string {
	if status, ok := pr.SupplierStatuses.Data()[supplier]; ok && status != "" {
		return status
	}
	return pr.Status
}

// SetSupplierStatus records the status for one supplier.
func (pr *PurchaseRequest) SetSupplierStatus(supplier, status string) {
	statuses := copyMap(pr.SupplierStatuses.Data())
	statuses[supplier] = status
	pr.SupplierStatuses = datatypes.NewJSONType(statuses)
}

// InvoiceForSupplier returns the invoice recorded for one supplier, if any.
func (pr *PurchaseRequest) InvoiceForSupplier(supplier string) (SupplierInvoice, bool) {
	invoice, ok := pr.SupplierInvoices.Data()[supplier]
	return invoice, ok
}

// SetSupplierInvoice records the invoice for one supplier.
func (pr *PurchaseRequest) SetSupplierInvoice(supplier string, invoice SupplierInvoice) {
	invoices := copyMap(pr.SupplierInvoices.Data())
	invoices[supplier] = invoice
	pr.SupplierInvoices = datatypes.NewJSONType(invoices)
}

// ReceivedDateForSupplier returns the recorded received timestamp for one
// supplier, if any.
func (pr *PurchaseRequest) ReceivedDateForSupplier(supplier string) (string, bool) {
	date, ok := pr.SupplierReceivedDates.Data()[supplier]
	return date, ok
}

// SetSupplierReceivedDate records when one supplier's delivery arrived.
func (pr *PurchaseRequest) SetSupplierReceivedDate(supplier string, receivedAt time.Time) {
	dates := copyMap(pr.SupplierReceivedDates.Data())
	dates[supplier] = receivedAt.UTC().Format("2006-01-02 15:04:05")
	pr.SupplierReceivedDates = datatypes.NewJSONType(dates)
}

// Suppliers returns the distinct supplier names across the request's items,
// preserving first-seen order.
func (pr *PurchaseRequest) Suppliers() []string {
	seen := make(map[string]struct{}, len(pr.Items))
	var suppliers []string
	for _, item := range pr.Items {
		if item.Supplier == "" {
			continue
		}
		if _, ok := seen[item.Supplier]; ok {
			continue
		}
		seen[item.Supplier] = struct{}{}
		suppliers = append(suppliers, item.Supplier)
	}
	return suppliers
}

// TotalCost is the ordered value of the request at snapshot prices.
func (pr *PurchaseRequest) TotalCost() float64 {
	total := 0.0
	for _, item := range pr.Items {
		total += item.CostPerUnit * item.OrderQuantity
	}
	return money.Round2(total)
}

// ReceivedTotalCost is the value of what has actually arrived.
func (pr *PurchaseRequest) ReceivedTotalCost() float64 {
	total := 0.0
	for _, item := range pr.Items {
		total += item.ReceivedCost()
	}
	return money.Round2(total)
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// PurchaseItem is one ordered line. CostPerUnit is a snapshot taken at
// ordering time so later master-list edits do not rewrite order history.
type PurchaseItem struct {
	gorm.Model
	PurchaseRequestID uint     `gorm:"not null;index" json:"purchase_request_id"`
	ProductID         *uint    `json:"product_id"`
	Code              string   `gorm:"type:varchar(50)" json:"code"`
	Description       string   `gorm:"not null" json:"description"`
	Quantity          float64  `gorm:"not null" json:"quantity"`
	Supplier          string   `gorm:"type:varchar(120)" json:"supplier"`
	SubCategory       string   `gorm:"type:varchar(50)" json:"sub_category"`
	CostPerUnit       float64  `gorm:"not null" json:"cost_per_unit"`
	OrderQuantity     float64  `gorm:"not null" json:"order_quantity"`
	QuantityReceived  *float64 `json:"quantity_received"`
}

// ReceivedCost values the line by what was actually delivered; zero until a
// received quantity is recorded.
func (pi PurchaseItem) ReceivedCost() float64 {
	if pi.QuantityReceived == nil {
		return 0.0
	}
	return money.Round2(pi.CostPerUnit * *pi.QuantityReceived)
}
