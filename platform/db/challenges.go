package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type ChallengeSchema struct {
	ID               uint
	Title            string
	Slug             string `gorm:"unique"`
	Category         string
	Description      string
	Intro            string
	PlayInstructions string
	Points           int
	Difficulty       string // "easy", "medium", "hard"
	SolutionType     string // "input", "cookie", "path", "header", "file"
	FrontendHint     string
	FrontendConfig   map[string]any `gorm:"serializer:json"`
	IsActive         bool
	SolveCount       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Submissions      []SubmissionSchema `gorm:"foreignKey:ChallengeID"` // get submissions who belong to this challenge
}

// ChallengeFilter narrows GetChallenges. Zero values mean "no filter".
type ChallengeFilter struct {
	ActiveOnly bool
	Category   string
	Difficulty string
}

func CreateChallenge(challenge ChallengeSchema) (ChallengeSchema, error) {
	result := db.Table("challenge_schemas").Create(&challenge)
	if result.Error != nil {
		return ChallengeSchema{}, result.Error
	}
	return challenge, nil
}

func GetChallenges(filter ChallengeFilter) ([]ChallengeSchema, error) {
	query := db.Table("challenge_schemas")
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var challenges []ChallengeSchema
	result := query.Order("id").Find(&challenges)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return challenges, nil
		} else {
			return nil, result.Error
		}
	}
	return challenges, nil
}

func GetChallengeByID(id uint) (ChallengeSchema, error) {
	var challenge ChallengeSchema
	result := db.Table("challenge_schemas").Where("id = ?", id).First(&challenge)
	if result.Error != nil {
		return ChallengeSchema{}, result.Error
	}
	return challenge, nil
}

func GetChallengeBySlug(slug string) (ChallengeSchema, error) {
	var challenge ChallengeSchema
	result := db.Table("challenge_schemas").Where("slug = ?", slug).First(&challenge)
	if result.Error != nil {
		return ChallengeSchema{}, result.Error
	}
	return challenge, nil
}

// UpdateChallenge applies a partial update. Keys must be column names.
func UpdateChallenge(id uint, updates map[string]any) error {
	updates["updated_at"] = time.Now()
	result := db.Table("challenge_schemas").Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteChallenge removes a challenge along with its submissions, solves, and
// visit records.
func DeleteChallenge(id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("challenge_id = ?", id).Delete(&SubmissionSchema{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", id).Delete(&SolveSchema{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", id).Delete(&VisitSchema{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&ChallengeSchema{}).Error
	})
}

func GetChallengeCategories() ([]string, error) {
	var categories []string
	result := db.Table("challenge_schemas").Where("is_active = ?", true).
		Distinct("category").Order("category").Pluck("category", &categories)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return categories, nil
		}
		return nil, result.Error
	}
	return categories, nil
}

func CountChallenges(activeOnly bool) (int64, error) {
	query := db.Table("challenge_schemas")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var c int64
	result := query.Count(&c)
	return c, result.Error
}
