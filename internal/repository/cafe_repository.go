package repository

import (
	"errors"

	"github.com/tulendi/cafe-directory/internal/models"
	"gorm.io/gorm"
)

type CafeRepository struct {
	db *gorm.DB
}

func NewCafeRepository(db *gorm.DB) *CafeRepository {
	return &CafeRepository{db: db}
}

func (r *CafeRepository) CreateCafe(cafe *models.Cafe) error {
	return r.db.Create(cafe).Error
}

func (r *CafeRepository) GetCafeByID(id uint) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.Where("id = ?", id).First(&cafe).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &cafe, nil
}

func (r *CafeRepository) GetCafeByName(name string) (*models.Cafe, error) {
	var cafe models.Cafe
	err := r.db.Where("name = ?", name).First(&cafe).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &cafe, nil
}

// GetAllCafes returns the full directory. An empty directory is an
// empty slice, not an error.
func (r *CafeRepository) GetAllCafes() ([]models.Cafe, error) {
	var cafes []models.Cafe
	err := r.db.Find(&cafes).Error
	if err != nil {
		return nil, err
	}
	return cafes, nil
}

// GetCafesByLocation filters by exact location match, not substring.
func (r *CafeRepository) GetCafesByLocation(location string) ([]models.Cafe, error) {
	var cafes []models.Cafe
	err := r.db.Where("location = ?", location).Find(&cafes).Error
	if err != nil {
		return nil, err
	}
	return cafes, nil
}

// UpdateCoffeePrice overwrites the coffee_price column only.
func (r *CafeRepository) UpdateCoffeePrice(id uint, price string) error {
	return r.db.Model(&models.Cafe{}).Where("id = ?", id).Update("coffee_price", price).Error
}

func (r *CafeRepository) DeleteCafe(id uint) error {
	return r.db.Delete(&models.Cafe{}, id).Error
}

// CountCafes returns the directory size.
func (r *CafeRepository) CountCafes() (int64, error) {
	var count int64
	err := r.db.Model(&models.Cafe{}).Count(&count).Error
	return count, err
}
