package costing

import "barkeep/models"

// RecipeHasMissingCost reports whether any line of the recipe fails to yield
// a trustworthy cost: an unresolvable reference, a product with no cost, a
// positive-quantity product line that still prices to zero, or a nested
// ingredient carrying its own missing-cost flag. The walk is deliberately
// independent of the cost calculation so it stays a usable cross-check.
func (e *Engine) RecipeHasMissingCost(recipe *models.Recipe) bool {
	if recipe == nil {
		return false
	}
	w := newWalk()
	w.enter(models.KindRecipe, recipe.ID)
	return e.recipeMissing(recipe, w)
}

// HomemadeHasMissingCost reports whether any component line of the homemade
// ingredient fails to yield a trustworthy cost.
func (e *Engine) HomemadeHasMissingCost(homemade *models.HomemadeIngredient) bool {
	if homemade == nil {
		return false
	}
	return e.homemadeMissing(homemade)
}

func (e *Engine) recipeMissing(recipe *models.Recipe, w *walk) bool {
	for _, line := range recipe.Ingredients {
		switch line.Kind {
		case models.KindProduct:
			product := e.productForRecipeLine(line)
			if product == nil {
				return true
			}
			if product.CostPerUnit == 0 {
				return true
			}
			if line.Quantity > 0 && productLineCost(product, line.Quantity) == 0 {
				return true
			}

		case models.KindHomemade:
			homemade, err := e.src.HomemadeByID(line.IngredientID)
			if err != nil || homemade == nil {
				return true
			}
			if !w.enter(models.KindHomemade, homemade.ID) {
				return true
			}
			missing := e.homemadeMissing(homemade)
			w.leave(models.KindHomemade, homemade.ID)
			if missing {
				return true
			}

		case models.KindRecipe:
			nested, err := e.src.RecipeByID(line.IngredientID)
			if err != nil || nested == nil {
				return true
			}
			if !w.enter(models.KindRecipe, nested.ID) {
				// Cycle or runaway nesting cannot produce a trustworthy
				// cost.
				return true
			}
			missing := e.recipeMissing(nested, w)
			w.leave(models.KindRecipe, nested.ID)
			if missing {
				return true
			}

		default:
			return true
		}
	}
	return false
}

func (e *Engine) homemadeMissing(homemade *models.HomemadeIngredient) bool {
	for _, item := range homemade.Items {
		// A line that never had a product link is rendered as-is and
		// contributes zero; only a stale link counts as a violation.
		if item.ProductID == nil {
			continue
		}
		product := e.productForHomemadeItem(item)
		if product == nil {
			return true
		}
		if product.CostPerUnit == 0 {
			return true
		}
		if item.Quantity > 0 && productLineCost(product, item.Quantity) == 0 {
			return true
		}
	}
	return false
}
