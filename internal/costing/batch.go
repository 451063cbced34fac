package costing

import "barkeep/models"

// BatchCategories lists the rollup buckets in display order.
var BatchCategories = []string{
	"Alcohol",
	"Syrups & Purees",
	"Juices",
	"Fruits",
	"Vegetables",
	"Dairy",
	"Non-Alcohol",
	"Other",
}

// BatchSummary sums raw line quantities (not costs) per category across the
// recipe's ingredient lines. Product lines map through the product's
// sub-category; homemade lines always count as "Syrups & Purees"; nested
// recipe lines always count as "Other". Unresolvable or non-positive lines
// are skipped. Every category is present in the result, zero or not.
func (e *Engine) BatchSummary(recipe *models.Recipe) map[string]float64 {
	summary := make(map[string]float64, len(BatchCategories))
	for _, category := range BatchCategories {
		summary[category] = 0
	}
	if recipe == nil {
		return summary
	}

	for _, line := range recipe.Ingredients {
		if line.Quantity <= 0 {
			continue
		}

		var category string
		switch line.Kind {
		case models.KindProduct:
			product := e.productForRecipeLine(line)
			if product == nil {
				continue
			}
			category = productBatchCategory(product.SubCategory)
		case models.KindHomemade:
			homemade, err := e.src.HomemadeByID(line.IngredientID)
			if err != nil || homemade == nil {
				continue
			}
			category = "Syrups & Purees"
		case models.KindRecipe:
			nested, err := e.src.RecipeByID(line.IngredientID)
			if err != nil || nested == nil {
				continue
			}
			category = "Other"
		default:
			continue
		}

		summary[category] += line.Quantity
	}

	return summary
}

func productBatchCategory(subCategory string) string {
	switch subCategory {
	case "Alcohol", "Fruits", "Vegetables", "Dairy", "Non-Alcohol":
		return subCategory
	case "Syrup", "Puree", "Syrups & Purees":
		return "Syrups & Purees"
	case "Juice":
		return "Juices"
	default:
		return "Other"
	}
}
