package costing

import (
	"errors"
	"strings"

	"barkeep/models"

	"gorm.io/gorm"
)

// GormSource loads catalog entities from the database, with child rows
// preloaded so a single lookup is enough for the cost walk.
type GormSource struct {
	db *gorm.DB
}

func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

func (s *GormSource) ProductByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return &product, nil
}

func (s *GormSource) ProductByCode(code string) (*models.Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	var product models.Product
	if err := s.db.Where("code = ?", code).First(&product).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return &product, nil
}

func (s *GormSource) HomemadeByID(id uint) (*models.HomemadeIngredient, error) {
	if id == 0 {
		return nil, nil
	}
	var homemade models.HomemadeIngredient
	if err := s.db.Preload("Items").First(&homemade, id).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return &homemade, nil
}

func (s *GormSource) RecipeByID(id uint) (*models.Recipe, error) {
	if id == 0 {
		return nil, nil
	}
	var recipe models.Recipe
	if err := s.db.Preload("Ingredients").First(&recipe, id).Error; err != nil {
		return nil, ignoreNotFound(err)
	}
	return &recipe, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
