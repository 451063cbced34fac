package purchase

import "barkeep/models"

// DeriveOverallStatus merges a set of per-supplier statuses into one display
// status. The rules apply in strict priority order: cancellation dominates,
// then partial receipt, then partial placement, then a uniform status, and
// finally the stored fallback. Reordering them changes observable behavior
// for mixed-supplier orders.
func DeriveOverallStatus(statuses map[string]string, fallback string) string {
	if len(statuses) == 0 {
		return fallback
	}

	total := 0
	cancelled := 0
	received := 0
	placed := 0
	uniform := ""
	first := true
	for _, status := range statuses {
		total++
		switch status {
		case StatusOrderCancelled:
			cancelled++
		case StatusOrderReceived:
			received++
		case StatusOrderPlaced:
			placed++
		}
		if first {
			uniform = status
			first = false
		} else if status != uniform {
			uniform = ""
		}
	}

	if cancelled > 0 {
		nonCancelled := total - cancelled
		if nonCancelled > 0 && received == nonCancelled {
			return StatusReceivedWithCancellations
		}
		return StatusOrderCancelled
	}

	if received > 0 && received < total {
		return StatusPartiallyReceived
	}

	if placed > 0 && placed < total && received == 0 {
		return StatusPartiallyOrdered
	}

	if uniform != "" {
		return uniform
	}

	return fallback
}

// OverallStatus derives the display status for a purchase request from its
// items' suppliers and the per-supplier status map. Requests with no
// supplier-tagged items report their stored status.
func OverallStatus(pr *models.PurchaseRequest) string {
	if pr == nil {
		return ""
	}
	suppliers := pr.Suppliers()
	if len(suppliers) == 0 {
		return pr.Status
	}
	statuses := make(map[string]string, len(suppliers))
	for _, supplier := range suppliers {
		statuses[supplier] = pr.StatusForSupplier(supplier)
	}
	return DeriveOverallStatus(statuses, pr.Status)
}
