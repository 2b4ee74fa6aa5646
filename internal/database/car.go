package database

import (
	"gorm.io/gorm"

	"github.com/thereayou/automart/internal/models"
)

func (d *Database) CreateCar(car *models.Car) error {
	return d.db.Create(car).Error
}

func (d *Database) GetCar(id string) (*models.Car, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var car models.Car
	if err := d.db.First(&car, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

// ListAvailableCars возвращает объявления в продаже, новые первыми
func (d *Database) ListAvailableCars() ([]models.Car, error) {
	var cars []models.Car
	err := d.db.
		Where("status = ?", models.StatusAvailable).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

func (d *Database) ListSellerCars(sellerID string) ([]models.Car, error) {
	var cars []models.Car
	err := d.db.
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

func (d *Database) UpdateCar(car *models.Car) error {
	return d.db.Save(car).Error
}

func (d *Database) DeleteCar(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM wishlist_items WHERE car_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Car{}, "id = ?", id).Error
	})
}
