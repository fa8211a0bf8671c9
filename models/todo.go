package models

import (
	"time"

	"gorm.io/gorm"
)

type Todo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AutoMigrate creates the tables for local SQLite runs and tests.
// PostgreSQL deployments use the versioned scripts in the migrations package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&CustomerHistory{},
		&Todo{},
	)
}
