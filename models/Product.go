package models

import (
	"gorm.io/gorm"

	"barkeep/internal/money"
)

// Selling units the costing engine prices directly. Any other value is
// treated as a container-priced unit and normalized through MlInBottle.
const (
	UnitML     = "ml"
	UnitGrams  = "grams"
	UnitPieces = "pieces"
)

// Purchase types for the master list.
const (
	PurchaseEach = "each"
	PurchaseCase = "case"
)

// Product is a purchasable master-list item priced per selling unit.
// Ingredient lines reference products by id but also keep a code snapshot,
// so a deleted product can be re-linked if it is recreated under the same
// code.
type Product struct {
	gorm.Model
	Code                string  `gorm:"uniqueIndex;not null" json:"code"`
	UniqueItemNumber    string  `gorm:"type:varchar(50)" json:"unique_item_number"`
	Description         string  `gorm:"not null" json:"description"`
	Supplier            string  `gorm:"type:varchar(120)" json:"supplier"`
	SupplierProductCode string  `gorm:"type:varchar(50)" json:"supplier_product_code"`
	Category            string  `gorm:"type:varchar(50)" json:"category"`
	SubCategory         string  `gorm:"type:varchar(50)" json:"sub_category"`
	ItemLevel           string  `gorm:"type:varchar(20);default:Primary" json:"item_level"`
	SellingUnit         string  `gorm:"type:varchar(20);default:ml" json:"selling_unit"`
	CostPerUnit         float64 `gorm:"not null" json:"cost_per_unit"`
	MlInBottle          float64 `json:"ml_in_bottle"`
	ABV                 float64 `json:"abv"`
	PurchaseType        string  `gorm:"type:varchar(10);default:each" json:"purchase_type"`
	BottlesPerCase      int     `gorm:"default:1" json:"bottles_per_case"`
	ImagePath           string  `gorm:"type:varchar(255)" json:"image_path"`
	Organisation        string  `gorm:"type:varchar(200)" json:"organisation"`
	CreatedBy           uint    `json:"created_by"`
	LastEditedBy        uint    `json:"last_edited_by"`
}

// CaseCost returns the cost of a full case for case-purchased products, or
// the plain unit cost otherwise.
func (p Product) CaseCost() float64 {
	if p.PurchaseType == PurchaseCase {
		return money.Round2(p.CostPerUnit * float64(p.BottlesPerCase))
	}
	return p.CostPerUnit
}
