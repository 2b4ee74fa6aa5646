package database

import (
	"errors"

	"github.com/thereayou/automart/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	d.db = db

	return d.Migrate()
}

// Migrate создаёт таблицы пользователей, объявлений и избранного
func (d *Database) Migrate() error {
	return d.db.AutoMigrate(&models.User{}, &models.Car{})
}
