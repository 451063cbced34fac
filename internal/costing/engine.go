package costing

import "barkeep/models"

// Ref identifies one ingredient reference by kind and id.
type Ref struct {
	Kind string
	ID   uint
}

// Repair records a stale product link that was re-bound by code during
// resolution. Exactly one of RecipeIngredientID and HomemadeItemID is set.
// The engine never writes; the caller decides whether to persist the new
// link.
type Repair struct {
	RecipeIngredientID uint
	HomemadeItemID     uint
	ProductCode        string
	ProductID          uint
}

// Source supplies catalog entities to the engine. Implementations return
// (nil, nil) when the entity does not exist; errors are reserved for
// infrastructure failures, which the engine treats the same as "not found".
type Source interface {
	ProductByID(id uint) (*models.Product, error)
	ProductByCode(code string) (*models.Product, error)
	HomemadeByID(id uint) (*models.HomemadeIngredient, error)
	RecipeByID(id uint) (*models.Recipe, error)
}

// Engine derives recipe and homemade-ingredient costs from current catalog
// prices. Cost computations never fail: an unresolvable or zero-cost line
// contributes zero, and the missing-cost checks surface it separately.
type Engine struct {
	src Source

	// OnRepair, when set, is invoked each time a stale product link is
	// re-bound by code. Repairs may repeat across calls until persisted.
	OnRepair func(Repair)
}

func New(src Source) *Engine {
	return &Engine{src: src}
}

// maxDepth caps nested-recipe evaluation alongside the on-stack cycle check,
// so pathological chains terminate even without a literal cycle.
const maxDepth = 32

type nodeKey struct {
	kind string
	id   uint
}

// walk tracks the recipes and homemade ingredients currently on the
// evaluation stack. Entries are removed on the way back up, so a diamond
// (the same sub-recipe reached twice via different parents) is evaluated
// both times; only a true cycle is cut.
type walk struct {
	onStack map[nodeKey]bool
	depth   int
}

func newWalk() *walk {
	return &walk{onStack: make(map[nodeKey]bool)}
}

func (w *walk) enter(kind string, id uint) bool {
	key := nodeKey{kind: kind, id: id}
	if w.onStack[key] || w.depth >= maxDepth {
		return false
	}
	w.onStack[key] = true
	w.depth++
	return true
}

func (w *walk) leave(kind string, id uint) {
	delete(w.onStack, nodeKey{kind: kind, id: id})
	w.depth--
}

func (e *Engine) productByID(id uint) *models.Product {
	if id == 0 {
		return nil
	}
	product, err := e.src.ProductByID(id)
	if err != nil {
		return nil
	}
	return product
}

// productForRecipeLine resolves a product-kind recipe line, falling back to
// the stored code snapshot when the id is stale.
func (e *Engine) productForRecipeLine(line models.RecipeIngredient) *models.Product {
	if product := e.productByID(line.IngredientID); product != nil {
		return product
	}
	if line.IngredientID == 0 || line.ProductCode == "" {
		return nil
	}
	product, err := e.src.ProductByCode(line.ProductCode)
	if err != nil || product == nil {
		return nil
	}
	e.repaired(Repair{
		RecipeIngredientID: line.ID,
		ProductCode:        line.ProductCode,
		ProductID:          product.ID,
	})
	return product
}

// productForHomemadeItem resolves a homemade component line, falling back to
// the stored code snapshot when the id is stale.
func (e *Engine) productForHomemadeItem(item models.HomemadeIngredientItem) *models.Product {
	if item.ProductID == nil {
		return nil
	}
	if product := e.productByID(*item.ProductID); product != nil {
		return product
	}
	if item.ProductCode == "" {
		return nil
	}
	product, err := e.src.ProductByCode(item.ProductCode)
	if err != nil || product == nil {
		return nil
	}
	e.repaired(Repair{
		HomemadeItemID: item.ID,
		ProductCode:    item.ProductCode,
		ProductID:      product.ID,
	})
	return product
}

func (e *Engine) repaired(r Repair) {
	if e.OnRepair != nil {
		e.OnRepair(r)
	}
}
