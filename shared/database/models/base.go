package models

// Base is the integer primary key shared by the menu and order tables.
type Base struct {
	ID int64 `json:"id" gorm:"primaryKey;autoIncrement"`
}

func (b *Base) GetID() int64   { return b.ID }
func (b *Base) SetID(id int64) { b.ID = id }

// Link is a many-to-many association exposed to clients as a list of ids.
// Targets is a slice of the associated model carrying only those ids.
type Link struct {
	Association string
	IDs         []int64
	Targets     any
}
