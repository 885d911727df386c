package menu

import (
	"gorm.io/gorm"

	"restaurant-backend/shared/database/models"
)

type Desk struct {
	models.Base
	DeskNumber int `json:"desk_number" gorm:"not null;index"`
	Capacity   int `json:"capacity" gorm:"not null"`
}

type Allergen struct {
	models.Base
	AllergenName string `json:"allergen_name" gorm:"size:100;not null"`
}

// Ingredient exposes its allergens as a list of ids.
type Ingredient struct {
	models.Base
	IngredientName string  `json:"ingredient_name" gorm:"size:100;not null"`
	Quantity       int     `json:"quantity" gorm:"not null"`
	AllergenIDs    []int64 `json:"allergen" gorm:"-"`

	// Relations
	Allergens []Allergen `json:"-" gorm:"many2many:ingredient_allergens;constraint:OnDelete:CASCADE"`
}

func (i *Ingredient) AfterFind(tx *gorm.DB) error {
	i.AllergenIDs = make([]int64, 0, len(i.Allergens))
	for _, a := range i.Allergens {
		i.AllergenIDs = append(i.AllergenIDs, a.ID)
	}
	return nil
}

func (i *Ingredient) Links() []models.Link {
	allergens := make([]Allergen, len(i.AllergenIDs))
	for k, id := range i.AllergenIDs {
		allergens[k].ID = id
	}
	return []models.Link{{Association: "Allergens", IDs: i.AllergenIDs, Targets: allergens}}
}

type Category struct {
	models.Base
	CategoryName string `json:"category_name" gorm:"size:100;not null"`
}

// Dish exposes its ingredients as a list of ids. LinkAR points to the AR model in object storage.
type Dish struct {
	models.Base
	DishName        string  `json:"dish_name" gorm:"size:100;not null"`
	Description     string  `json:"description" gorm:"size:1000"`
	TimeElaboration string  `json:"time_elaboration" gorm:"type:time"` // HH:MM:SS
	Price           int     `json:"price" gorm:"not null"`
	CategoryID      *int64  `json:"category"`
	IngredientIDs   []int64 `json:"ingredient" gorm:"-"`
	LinkAR          string  `json:"link_ar" gorm:"size:1000"`

	// Relations
	Category    *Category    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Ingredients []Ingredient `json:"-" gorm:"many2many:dish_ingredients;constraint:OnDelete:CASCADE"`
}

func (d *Dish) AfterFind(tx *gorm.DB) error {
	d.IngredientIDs = make([]int64, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		d.IngredientIDs = append(d.IngredientIDs, ing.ID)
	}
	return nil
}

func (d *Dish) Links() []models.Link {
	ingredients := make([]Ingredient, len(d.IngredientIDs))
	for k, id := range d.IngredientIDs {
		ingredients[k].ID = id
	}
	return []models.Link{{Association: "Ingredients", IDs: d.IngredientIDs, Targets: ingredients}}
}

type Garnish struct {
	models.Base
	GarnishName string `json:"garnish_name" gorm:"size:100;not null"`
}
