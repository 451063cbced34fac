package models

import "gorm.io/gorm"

// HomemadeIngredient is a named mixture prepared in-house (a syrup, puree,
// infusion) with a declared yield. Its cost is never stored; the costing
// engine derives it from the current prices of the component products.
type HomemadeIngredient struct {
	gorm.Model
	Name          string  `gorm:"not null" json:"name"`
	Code          string  `gorm:"uniqueIndex" json:"code"`
	TotalVolumeML float64 `gorm:"not null" json:"total_volume_ml"`
	Unit          string  `gorm:"type:varchar(20);default:ml" json:"unit"`
	Method        string  `gorm:"type:text" json:"method"`
	Category      string  `gorm:"type:varchar(50)" json:"category"`
	SubCategory   string  `gorm:"type:varchar(50)" json:"sub_category"`
	Organisation  string  `gorm:"type:varchar(200)" json:"organisation"`
	CreatedBy     uint    `json:"created_by"`
	LastEditedBy  uint    `json:"last_edited_by"`

	Items []HomemadeIngredientItem `gorm:"foreignKey:HomemadeIngredientID;constraint:OnDelete:CASCADE" json:"items"`
}

// HomemadeIngredientItem is one component line of a homemade ingredient.
// ProductID may go stale when the product is deleted; the name and code
// snapshots keep the line renderable and allow re-linking by code.
type HomemadeIngredientItem struct {
	gorm.Model
	HomemadeIngredientID uint    `gorm:"not null;index" json:"homemade_ingredient_id"`
	ProductID            *uint   `json:"product_id"`
	Quantity             float64 `json:"quantity"`
	Unit                 string  `gorm:"type:varchar(20);default:ml" json:"unit"`
	ProductName          string  `gorm:"type:varchar(200)" json:"product_name"`
	ProductCode          string  `gorm:"type:varchar(50)" json:"product_code"`
}
