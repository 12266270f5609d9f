package domain

import (
	"errors"
	"time"
)

// FoodItem is a sellable item defined by a recipe of raw-material quantities.
type FoodItem struct {
	ID          int
	Name        string
	Price       float64
	IsAvailable bool
	Recipe      []RecipeLine
	CreatedAt   time.Time
}

// RecipeLine is one ingredient requirement within a food item's recipe.
// MaterialName and Unit are filled in from the referenced raw material when
// the item is loaded.
type RecipeLine struct {
	ID              int
	FoodItemID      int
	RawMaterialID   int
	QuantityPerUnit float64
	MaterialName    string
	Unit            string
}

func (f *FoodItem) Validate() error {
	if len(f.Name) < 1 || len(f.Name) > 100 {
		return errors.New("food item name must be 1-100 characters")
	}
	if f.Price <= 0 {
		return errors.New("food item price must be positive")
	}
	if len(f.Recipe) == 0 {
		return errors.New("food item must have at least one recipe line")
	}
	for _, line := range f.Recipe {
		if line.RawMaterialID <= 0 {
			return errors.New("recipe line must reference a raw material")
		}
		if line.QuantityPerUnit <= 0 {
			return errors.New("recipe line quantity must be positive")
		}
	}
	return nil
}

// RequiredMaterials expands the recipe for the given order quantity into the
// amount needed of each raw material. Lines referencing the same material
// accumulate.
func (f *FoodItem) RequiredMaterials(quantity int) map[int]float64 {
	required := make(map[int]float64, len(f.Recipe))
	for _, line := range f.Recipe {
		required[line.RawMaterialID] += line.QuantityPerUnit * float64(quantity)
	}
	return required
}
