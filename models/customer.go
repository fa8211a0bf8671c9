package models

// DefaultCustomerName is stored when a customer is written without a name.
const DefaultCustomerName = "na"

type Customer struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;default:'na'" json:"name"`
	Age  int    `gorm:"not null" json:"age"`

	CustomerHistories []CustomerHistory `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer_histories"`
}

// CustomerHistory is owned by exactly one Customer and is removed with it.
type CustomerHistory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	History    string `gorm:"size:100;not null" json:"history"`
	CustomerID uint   `gorm:"index;not null" json:"-"`
}
