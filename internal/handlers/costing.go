package handlers

import (
	"context"

	"barkeep/internal/costing"
	applog "barkeep/internal/log"
	"barkeep/models"
)

// costEngine builds a cost engine over the request-scoped database handle.
// Stale product links repaired during the walk are persisted immediately so
// the re-link survives the request.
func costEngine(ctx context.Context) *costing.Engine {
	engine := costing.New(costing.NewGormSource(database.WithContext(ctx)))
	engine.OnRepair = func(repair costing.Repair) {
		persistRepair(ctx, repair)
	}
	return engine
}

func persistRepair(ctx context.Context, repair costing.Repair) {
	var err error
	switch {
	case repair.RecipeIngredientID != 0:
		err = database.WithContext(ctx).
			Model(&models.RecipeIngredient{}).
			Where("id = ?", repair.RecipeIngredientID).
			Update("ingredient_id", repair.ProductID).Error
	case repair.HomemadeItemID != 0:
		err = database.WithContext(ctx).
			Model(&models.HomemadeIngredientItem{}).
			Where("id = ?", repair.HomemadeItemID).
			Update("product_id", repair.ProductID).Error
	default:
		return
	}
	if err != nil {
		applog.Error(ctx, "failed to persist re-linked ingredient", "error", err,
			"recipe_ingredient_id", repair.RecipeIngredientID,
			"homemade_item_id", repair.HomemadeItemID,
			"product_id", repair.ProductID)
		return
	}
	applog.Info(ctx, "re-linked ingredient line by product code",
		"recipe_ingredient_id", repair.RecipeIngredientID,
		"homemade_item_id", repair.HomemadeItemID,
		"product_code", repair.ProductCode,
		"product_id", repair.ProductID)
}
