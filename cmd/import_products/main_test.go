package main

import (
	"os"
	"path/filepath"
	"testing"

	"barkeep/models"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "products.csv")
	contents := "Code,Description,Supplier,Cost Per Unit\n" +
		"P-001, Monin Vanilla Syrup ,Monin,0.05\n" +
		"P-002,Absolut Vodka,BevCo,0.12\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := readCSV(path)
	if err != nil {
		t.Fatalf("readCSV returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0]["Description"] != "Monin Vanilla Syrup" {
		t.Fatalf("Description = %q, want trimmed value", records[0]["Description"])
	}
	if records[1]["Supplier"] != "BevCo" {
		t.Fatalf("Supplier = %q", records[1]["Supplier"])
	}
}

func TestBuildProductDefaultsAndCategorization(t *testing.T) {
	t.Parallel()

	product := buildProduct(map[string]string{
		"Code":          "P-010",
		"Description":   "Absolut  Vodka 750ml",
		"Cost Per Unit": "45.50",
		"Ml In Bottle":  "750",
	})

	if product.Code != "P-010" {
		t.Fatalf("Code = %q", product.Code)
	}
	if product.Description != "Absolut Vodka 750ml" {
		t.Fatalf("Description = %q, want collapsed whitespace", product.Description)
	}
	if product.Category != "Beverage" {
		t.Fatalf("Category = %q, want %q", product.Category, "Beverage")
	}
	if product.SubCategory != "Vodka" {
		t.Fatalf("SubCategory = %q, want %q", product.SubCategory, "Vodka")
	}
	if product.SellingUnit != models.UnitML {
		t.Fatalf("SellingUnit = %q, want %q", product.SellingUnit, models.UnitML)
	}
	if product.PurchaseType != models.PurchaseEach {
		t.Fatalf("PurchaseType = %q, want %q", product.PurchaseType, models.PurchaseEach)
	}
	if product.BottlesPerCase != 1 {
		t.Fatalf("BottlesPerCase = %d, want 1", product.BottlesPerCase)
	}
	if product.CostPerUnit != 45.5 {
		t.Fatalf("CostPerUnit = %v", product.CostPerUnit)
	}
}

func TestBuildProductKeepsExplicitCategories(t *testing.T) {
	t.Parallel()

	product := buildProduct(map[string]string{
		"Code":         "P-011",
		"Description":  "House Grenadine",
		"Category":     "Beverage",
		"Sub Category": "Syrup",
	})

	if product.Category != "Beverage" || product.SubCategory != "Syrup" {
		t.Fatalf("categories = %q/%q, want explicit values kept", product.Category, product.SubCategory)
	}
}

func TestParseFirstNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{name: "plain", value: "12.5", want: 12.5},
		{name: "with currency", value: "AED 1,250.75", want: 1250.75},
		{name: "with unit", value: "750 ml", want: 750},
		{name: "not applicable", value: "N/A", want: 0},
		{name: "empty", value: "", want: 0},
		{name: "no digits", value: "unknown", want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := parseFirstNumber(tc.value); got != tc.want {
				t.Fatalf("parseFirstNumber(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
