package database

import (
	"github.com/thereayou/automart/internal/models"
)

// GetWishlist загружает избранные объявления пользователя
func (d *Database) GetWishlist(userID string) ([]models.Car, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	var user models.User
	if err := d.db.Preload("Wishlist").First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return user.Wishlist, nil
}

func (d *Database) InWishlist(userID, carID string) (bool, error) {
	if checkID(carID) != nil {
		return false, nil
	}
	var count int64
	err := d.db.Table("wishlist_items").
		Where("user_id = ? AND car_id = ?", userID, carID).
		Count(&count).Error
	return count > 0, err
}

// ToggleWishlist добавляет объявление в избранное или убирает его оттуда.
// Возвращает новое состояние.
func (d *Database) ToggleWishlist(userID, carID string) (bool, error) {
	var user models.User
	var car models.Car

	if err := checkID(carID); err != nil {
		return false, err
	}
	if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
		return false, err
	}

	if err := d.db.First(&car, "id = ?", carID).Error; err != nil {
		return false, err
	}

	present, err := d.InWishlist(userID, carID)
	if err != nil {
		return false, err
	}

	if present {
		return false, d.db.Model(&user).Association("Wishlist").Delete(&car)
	}
	return true, d.db.Model(&user).Association("Wishlist").Append(&car)
}
