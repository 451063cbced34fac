package costing

import (
	"barkeep/internal/money"
	"barkeep/models"
)

// RecipeTotalCost returns the recipe's total cost at current prices.
// Each line is rounded to 2 decimal places, and so is the sum.
func (e *Engine) RecipeTotalCost(recipe *models.Recipe) float64 {
	if recipe == nil {
		return 0.0
	}
	w := newWalk()
	w.enter(models.KindRecipe, recipe.ID)
	return e.recipeTotal(recipe, w)
}

// HomemadeTotalCost returns the total cost of one prepared batch.
func (e *Engine) HomemadeTotalCost(homemade *models.HomemadeIngredient) float64 {
	if homemade == nil {
		return 0.0
	}
	return e.homemadeTotal(homemade)
}

// HomemadeCostPerUnit returns the batch cost divided by the declared yield,
// rounded to 4 decimal places. A non-positive yield degrades to 0.0 rather
// than dividing by zero.
func (e *Engine) HomemadeCostPerUnit(homemade *models.HomemadeIngredient) float64 {
	if homemade == nil {
		return 0.0
	}
	return e.homemadeCostPerUnit(homemade)
}

// LineCost returns the cost contribution of a single ingredient reference at
// quantity q, using the same resolution and rounding rules as the recipe
// walk.
func (e *Engine) LineCost(ref Ref, q float64) float64 {
	line := models.RecipeIngredient{Kind: ref.Kind, IngredientID: ref.ID, Quantity: q}
	return e.lineCost(line, newWalk())
}

func (e *Engine) recipeTotal(recipe *models.Recipe, w *walk) float64 {
	total := 0.0
	for _, line := range recipe.Ingredients {
		total += e.lineCost(line, w)
	}
	return money.Round2(total)
}

func (e *Engine) lineCost(line models.RecipeIngredient, w *walk) float64 {
	if line.Quantity <= 0 {
		return 0.0
	}

	switch line.Kind {
	case models.KindProduct:
		return productLineCost(e.productForRecipeLine(line), line.Quantity)

	case models.KindHomemade:
		homemade, err := e.src.HomemadeByID(line.IngredientID)
		if err != nil || homemade == nil {
			return 0.0
		}
		if !w.enter(models.KindHomemade, homemade.ID) {
			return 0.0
		}
		perUnit := e.homemadeCostPerUnit(homemade)
		w.leave(models.KindHomemade, homemade.ID)
		return money.Round2(perUnit * line.Quantity)

	case models.KindRecipe:
		// Quantity multiplies whole batches of the nested recipe, not a
		// volume.
		nested, err := e.src.RecipeByID(line.IngredientID)
		if err != nil || nested == nil {
			return 0.0
		}
		if !w.enter(models.KindRecipe, nested.ID) {
			return 0.0
		}
		batchCost := e.recipeTotal(nested, w)
		w.leave(models.KindRecipe, nested.ID)
		return money.Round2(batchCost * line.Quantity)
	}

	return 0.0
}

func (e *Engine) homemadeTotal(homemade *models.HomemadeIngredient) float64 {
	total := 0.0
	for _, item := range homemade.Items {
		total += e.homemadeItemCost(item)
	}
	return money.Round2(total)
}

func (e *Engine) homemadeCostPerUnit(homemade *models.HomemadeIngredient) float64 {
	if homemade.TotalVolumeML <= 0 {
		return 0.0
	}
	return money.Round4(e.homemadeTotal(homemade) / homemade.TotalVolumeML)
}

func (e *Engine) homemadeItemCost(item models.HomemadeIngredientItem) float64 {
	if item.Quantity <= 0 {
		return 0.0
	}
	return productLineCost(e.productForHomemadeItem(item), item.Quantity)
}

// productLineCost prices a quantity of product. Units the catalog prices
// directly multiply straight through; any other selling unit is treated as
// container-priced and normalized to per-ml via MlInBottle when declared.
func productLineCost(product *models.Product, qty float64) float64 {
	if product == nil || qty <= 0 || product.CostPerUnit == 0 {
		return 0.0
	}

	switch product.SellingUnit {
	case models.UnitML, models.UnitGrams, models.UnitPieces:
		return money.Round2(product.CostPerUnit * qty)
	default:
		if product.MlInBottle > 0 {
			return money.Round2(product.CostPerUnit / product.MlInBottle * qty)
		}
		return money.Round2(product.CostPerUnit * qty)
	}
}
