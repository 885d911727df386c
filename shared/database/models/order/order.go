package order

import (
	"restaurant-backend/shared/database/models"
	"restaurant-backend/shared/database/models/menu"
)

type Order struct {
	models.Base
	DeskID     int64  `json:"desk" gorm:"not null;index"`
	Date       string `json:"date" gorm:"type:date;not null"`
	Time       string `json:"time" gorm:"type:time;not null"`
	TotalPrice int    `json:"total_price" gorm:"not null"`
	Status     string `json:"status" gorm:"size:100"`

	// Relations
	Desk *menu.Desk `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderDish is one line of an order.
type OrderDish struct {
	models.Base
	OrderID  int64 `json:"order" gorm:"not null;index"`
	DishID   int64 `json:"dish" gorm:"not null;index"`
	Quantity int   `json:"quantity" gorm:"not null;default:1"`

	// Relations
	Order *Order     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Dish  *menu.Dish `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type Invoice struct {
	models.Base
	OrderID    int64  `json:"order" gorm:"not null;index"`
	Date       string `json:"date" gorm:"type:date;not null"`
	TotalPrice int    `json:"total_price" gorm:"not null"`

	// Relations
	Order *Order `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type InvoiceDish struct {
	models.Base
	InvoiceID int64 `json:"invoice" gorm:"not null;index"`
	DishID    int64 `json:"dish" gorm:"not null;index"`
	Quantity  int   `json:"quantity" gorm:"not null;default:1"`

	// Relations
	Invoice *Invoice   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Dish    *menu.Dish `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
