package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

// checkID отсекает id, которые не могут быть UUID: Postgres ответил бы
// ошибкой синтаксиса вместо "не найдено"
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound сообщает, что запись отсутствует
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
