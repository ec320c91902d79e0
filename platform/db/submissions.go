package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type SubmissionSchema struct {
	ID            uint
	UserID        uint
	ChallengeID   uint
	IsCorrect     bool
	SubmittedData map[string]any `gorm:"serializer:json"`
	ResultMessage string
	PointsEarned  int
	CreatedAt     time.Time
	Challenge     ChallengeSchema `gorm:"foreignKey:ChallengeID"`
}

func CreateSubmission(submission SubmissionSchema) (SubmissionSchema, error) {
	result := db.Create(&submission)
	if result.Error != nil {
		return SubmissionSchema{}, result.Error
	}
	return submission, nil
}

// GetUserSubmissions returns the user's most recent attempts against one
// challenge, newest first.
func GetUserSubmissions(userID uint, challengeID uint, limit int) ([]SubmissionSchema, error) {
	var submissions []SubmissionSchema
	result := db.Table("submission_schemas").
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Order("created_at desc").Limit(limit).Find(&submissions)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return submissions, nil
		}
		return nil, result.Error
	}
	return submissions, nil
}

// GetRecentSolves returns the user's latest correct submissions with the
// challenge preloaded, newest first.
func GetRecentSolves(userID uint, limit int) ([]SubmissionSchema, error) {
	var submissions []SubmissionSchema
	result := db.Table("submission_schemas").Preload("Challenge", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "title", "points") // only select what the progress view shows
	}).Where("user_id = ? AND is_correct = ?", userID, true).
		Order("created_at desc").Limit(limit).Find(&submissions)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return submissions, nil
		}
		return nil, result.Error
	}
	return submissions, nil
}

func CountSubmissions() (int64, error) {
	var c int64
	result := db.Table("submission_schemas").Count(&c)
	return c, result.Error
}

func CountCorrectSubmissions() (int64, error) {
	var c int64
	result := db.Table("submission_schemas").Where("is_correct = ?", true).Count(&c)
	return c, result.Error
}
