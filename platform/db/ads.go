package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type AdSchema struct {
	ID              uint
	Position        string // "top", "bottom", "sidebar", "banner"
	Content         string
	IsActive        bool
	ClickCount      int
	ImpressionCount int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func CreateAd(ad AdSchema) (AdSchema, error) {
	result := db.Table("ad_schemas").Create(&ad)
	if result.Error != nil {
		return AdSchema{}, result.Error
	}
	return ad, nil
}

// GetAds returns ads, optionally restricted to one position. activeOnly skips
// disabled slots.
func GetAds(position string, activeOnly bool) ([]AdSchema, error) {
	query := db.Table("ad_schemas")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if position != "" {
		query = query.Where("position = ?", position)
	}

	var ads []AdSchema
	result := query.Order("created_at desc").Find(&ads)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ads, nil
		}
		return nil, result.Error
	}
	return ads, nil
}

func GetAdByID(id uint) (AdSchema, error) {
	var ad AdSchema
	result := db.Table("ad_schemas").Where("id = ?", id).First(&ad)
	if result.Error != nil {
		return AdSchema{}, result.Error
	}
	return ad, nil
}

func GetAdByPosition(position string) (AdSchema, error) {
	var ad AdSchema
	result := db.Table("ad_schemas").Where("position = ?", position).First(&ad)
	if result.Error != nil {
		return AdSchema{}, result.Error
	}
	return ad, nil
}

func UpdateAdContent(id uint, content string) error {
	return db.Table("ad_schemas").Where("id = ?", id).
		Updates(map[string]any{"content": content, "updated_at": time.Now()}).Error
}

func SetAdActive(id uint, active bool) error {
	return db.Table("ad_schemas").Where("id = ?", id).Update("is_active", active).Error
}

func DeleteAd(id uint) error {
	return db.Where("id = ?", id).Delete(&AdSchema{}).Error
}

// IncrementImpressions bumps the impression counter of every ad just served.
func IncrementImpressions(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Table("ad_schemas").Where("id IN ?", ids).
		Update("impression_count", gorm.Expr("impression_count + 1")).Error
}

func IncrementClicks(id uint) error {
	return db.Table("ad_schemas").Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1")).Error
}

func CountAds() (int64, error) {
	var c int64
	result := db.Table("ad_schemas").Count(&c)
	return c, result.Error
}
