package database

import (
	"gorm.io/gorm"

	"github.com/threadloom/threadloom/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Community{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
	)
}
