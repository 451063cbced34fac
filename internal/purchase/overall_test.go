package purchase

import (
	"testing"

	"barkeep/models"
)

func TestDeriveOverallStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		statuses map[string]string
		fallback string
		want     string
	}{
		{
			"received plus cancelled",
			map[string]string{"A": StatusOrderReceived, "B": StatusOrderCancelled},
			StatusPending,
			StatusReceivedWithCancellations,
		},
		{
			"cancelled dominates unfinished",
			map[string]string{"A": StatusOrderPlaced, "B": StatusOrderCancelled},
			StatusPending,
			StatusOrderCancelled,
		},
		{
			"all cancelled",
			map[string]string{"A": StatusOrderCancelled, "B": StatusOrderCancelled},
			StatusPending,
			StatusOrderCancelled,
		},
		{
			"partially received",
			map[string]string{"A": StatusOrderReceived, "B": StatusPending},
			StatusPending,
			StatusPartiallyReceived,
		},
		{
			"received beats placed partial",
			map[string]string{"A": StatusOrderReceived, "B": StatusOrderPlaced},
			StatusPending,
			StatusPartiallyReceived,
		},
		{
			"partially ordered",
			map[string]string{"A": StatusOrderPlaced, "B": StatusPending},
			StatusPending,
			StatusPartiallyOrdered,
		},
		{
			"uniform pending",
			map[string]string{"A": StatusPending, "B": StatusPending},
			StatusOrderPlaced,
			StatusPending,
		},
		{
			"uniform received",
			map[string]string{"A": StatusOrderReceived, "B": StatusOrderReceived},
			StatusPending,
			StatusOrderReceived,
		},
		{
			"mixed without partial match falls back",
			map[string]string{"A": StatusPendingApproval, "B": StatusPending},
			StatusPending,
			StatusPending,
		},
		{
			"empty map falls back",
			map[string]string{},
			StatusPending,
			StatusPending,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DeriveOverallStatus(tt.statuses, tt.fallback); got != tt.want {
				t.Fatalf("DeriveOverallStatus(%v) = %q, want %q", tt.statuses, got, tt.want)
			}
		})
	}
}

func TestOverallStatusFromRequest(t *testing.T) {
	t.Parallel()

	pr := &models.PurchaseRequest{
		Status: StatusPending,
		Items: []models.PurchaseItem{
			{Supplier: "Acme Beverages", Description: "Gin", CostPerUnit: 100, OrderQuantity: 2},
			{Supplier: "Fresh Farm", Description: "Limes", CostPerUnit: 5, OrderQuantity: 10},
		},
	}
	pr.SetSupplierStatus("Acme Beverages", StatusOrderReceived)

	// Fresh Farm has no tracked status yet, so it falls back to the stored
	// request status.
	if got := OverallStatus(pr); got != StatusPartiallyReceived {
		t.Fatalf("OverallStatus = %q, want %q", got, StatusPartiallyReceived)
	}

	pr.SetSupplierStatus("Fresh Farm", StatusOrderReceived)
	if got := OverallStatus(pr); got != StatusOrderReceived {
		t.Fatalf("OverallStatus = %q, want %q", got, StatusOrderReceived)
	}
}

func TestOverallStatusWithoutSuppliers(t *testing.T) {
	t.Parallel()

	pr := &models.PurchaseRequest{
		Status: StatusPendingApproval,
		Items:  []models.PurchaseItem{{Description: "Misc", CostPerUnit: 1, OrderQuantity: 1}},
	}

	if got := OverallStatus(pr); got != StatusPendingApproval {
		t.Fatalf("OverallStatus = %q, want %q", got, StatusPendingApproval)
	}
}
