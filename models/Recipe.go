package models

import (
	"gorm.io/gorm"

	"barkeep/internal/money"
)

// Ingredient kinds a recipe line may reference.
const (
	KindProduct  = "product"
	KindHomemade = "homemade"
	KindRecipe   = "recipe"
)

// Recipe is a composed food or beverage item built from products, homemade
// ingredients, and/or other recipes. Total cost is always derived from
// current prices, never stored.
type Recipe struct {
	gorm.Model
	Code                     string  `gorm:"uniqueIndex" json:"code"`
	Title                    string  `gorm:"not null" json:"title"`
	Method                   string  `gorm:"type:text" json:"method"`
	RecipeType               string  `gorm:"type:varchar(20)" json:"recipe_type"`
	ItemLevel                string  `gorm:"type:varchar(20);default:Primary" json:"item_level"`
	FoodCategory             string  `gorm:"type:varchar(50)" json:"food_category"`
	BeverageCategory         string  `gorm:"type:varchar(50)" json:"beverage_category"`
	Garnish                  string  `gorm:"type:text" json:"garnish"`
	Glassware                string  `gorm:"type:varchar(200)" json:"glassware"`
	Plates                   string  `gorm:"type:varchar(200)" json:"plates"`
	ImagePath                string  `gorm:"type:varchar(255)" json:"image_path"`
	SellingPrice             float64 `json:"selling_price"`
	VATPercentage            float64 `json:"vat_percentage"`
	ServiceChargePercentage  float64 `json:"service_charge_percentage"`
	GovernmentFeesPercentage float64 `json:"government_fees_percentage"`
	Organisation             string  `gorm:"type:varchar(200)" json:"organisation"`
	CreatedBy                uint    `gorm:"not null" json:"created_by"`
	LastEditedBy             uint    `json:"last_edited_by"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// SellingPriceWithFees returns the selling price inclusive of VAT, service
// charge, and government fees.
func (r Recipe) SellingPriceWithFees() float64 {
	if r.SellingPrice <= 0 {
		return 0.0
	}
	fees := r.VATPercentage + r.ServiceChargePercentage + r.GovernmentFeesPercentage
	return money.Round2(r.SellingPrice * (1 + fees/100))
}

// CostPercentage reports cost as a percentage of the fee-exclusive selling
// price. The stored selling price is inclusive of all fees, so the base is
// recovered before dividing. Returns false when no selling price is set.
func (r Recipe) CostPercentage(totalCost float64) (float64, bool) {
	if r.SellingPrice <= 0 {
		return 0, false
	}
	base := r.SellingPrice
	fees := r.VATPercentage + r.ServiceChargePercentage + r.GovernmentFeesPercentage
	if fees > 0 {
		base = r.SellingPrice / (1 + fees/100)
	}
	return money.Round2(totalCost / base * 100), true
}

// RecipeIngredient is one line of a recipe. Kind selects which entity the
// IngredientID points at. Name and code snapshots survive deletion of the
// referenced entity.
type RecipeIngredient struct {
	gorm.Model
	RecipeID       uint    `gorm:"not null;index" json:"recipe_id"`
	Kind           string  `gorm:"type:varchar(20);not null" json:"kind"`
	IngredientID   uint    `json:"ingredient_id"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `gorm:"type:varchar(20);default:ml" json:"unit"`
	IngredientName string  `gorm:"type:varchar(200)" json:"ingredient_name"`
	ProductCode    string  `gorm:"type:varchar(50)" json:"product_code"`
}
