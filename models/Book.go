package models

import "gorm.io/gorm"

// Library shelves. Bartenders see the bartender shelf, chefs the chef
// shelf, managers both.
const (
	LibraryBartender = "bartender"
	LibraryChef      = "chef"
)

// Book is an entry in the knowledge library: a PDF with optional cover art.
type Book struct {
	gorm.Model
	Title          string `gorm:"not null" json:"title"`
	Author         string `gorm:"type:varchar(200)" json:"author"`
	LibraryType    string `gorm:"type:varchar(20);not null" json:"library_type"`
	PDFPath        string `gorm:"type:varchar(255);not null" json:"pdf_path"`
	CoverImagePath string `gorm:"type:varchar(255)" json:"cover_image_path"`
	PageCount      int    `json:"page_count"`
	Organisation   string `gorm:"type:varchar(200)" json:"organisation"`
	CreatedBy      uint   `json:"created_by"`
}
