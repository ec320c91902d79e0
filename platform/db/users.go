package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type UserSchema struct {
	ID             uint
	Email          string `gorm:"unique"`
	Username       string `gorm:"unique"`
	HashedPassword string `json:"-"`
	Role           string // "user" or "admin"
	Score          int
	IsActive       bool
	LastLogin      *time.Time
	CreatedAt      time.Time
	Solves         []SolveSchema      `gorm:"foreignKey:UserID"` // get solves who belong to this user
	Submissions    []SubmissionSchema `gorm:"foreignKey:UserID"` // get submissions who belong to this user
}

// SolveSchema records one user solving one challenge. The pair is unique so a
// challenge can never be credited twice.
type SolveSchema struct {
	UserID      uint `gorm:"uniqueIndex:idx_user_challenge"`
	ChallengeID uint `gorm:"uniqueIndex:idx_user_challenge"`
	CreatedAt   time.Time
}

func CreateUser(user UserSchema) (UserSchema, error) {
	result := db.Table("user_schemas").Create(&user)
	if result.Error != nil {
		return UserSchema{}, result.Error
	}
	return user, nil
}

func GetUsers() ([]UserSchema, error) {
	var users []UserSchema
	result := db.Table("user_schemas").Order("created_at desc").Find(&users)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return users, nil
		} else {
			return nil, result.Error
		}
	}
	return users, nil
}

func GetUserByID(id uint) (UserSchema, error) {
	var user UserSchema
	result := db.Table("user_schemas").Where("id = ?", id).First(&user)
	if result.Error != nil {
		return UserSchema{}, result.Error
	}
	return user, nil
}

func GetUserByEmail(email string) (UserSchema, error) {
	var user UserSchema
	result := db.Table("user_schemas").Where("email = ?", email).First(&user)
	if result.Error != nil {
		return UserSchema{}, result.Error
	}
	return user, nil
}

func GetUserByUsername(username string) (UserSchema, error) {
	var user UserSchema
	result := db.Table("user_schemas").Where("username = ?", username).First(&user)
	if result.Error != nil {
		return UserSchema{}, result.Error
	}
	return user, nil
}

func UpdateUserRole(userID uint, role string) error {
	result := db.Table("user_schemas").Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func TouchLastLogin(userID uint) error {
	now := time.Now()
	return db.Table("user_schemas").Where("id = ?", userID).Update("last_login", &now).Error
}

// GetSolvedChallengeIDs returns the IDs of every challenge the user has solved.
func GetSolvedChallengeIDs(userID uint) ([]uint, error) {
	var ids []uint
	result := db.Table("solve_schemas").Where("user_id = ?", userID).Order("challenge_id").Pluck("challenge_id", &ids)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ids, nil
		}
		return nil, result.Error
	}
	return ids, nil
}

// AddSolve credits a correct submission: records the solve, adds the points to
// the user's score, and bumps the challenge solve count, all in one transaction.
func AddSolve(userID uint, challengeID uint, points int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		solve := SolveSchema{UserID: userID, ChallengeID: challengeID}
		if err := tx.Create(&solve).Error; err != nil {
			return err
		}

		if err := tx.Table("user_schemas").Where("id = ?", userID).
			Update("score", gorm.Expr("score + ?", points)).Error; err != nil {
			return err
		}

		return tx.Table("challenge_schemas").Where("id = ?", challengeID).
			Update("solve_count", gorm.Expr("solve_count + 1")).Error
	})
}

// GetTopUsers returns the highest scoring active accounts with their solves
// preloaded, ties broken by account age.
func GetTopUsers(limit int) ([]UserSchema, error) {
	var users []UserSchema
	result := db.Table("user_schemas").Preload("Solves").Where("is_active = ?", true).
		Order("score desc").Order("id").Limit(limit).Find(&users)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return users, nil
		}
		return nil, result.Error
	}
	return users, nil
}

func CountUsers() (int64, error) {
	var c int64
	result := db.Table("user_schemas").Where("is_active = ?", true).Count(&c)
	return c, result.Error
}

// CountUsersWithScoreAbove is used to compute a user's rank: rank = count + 1.
func CountUsersWithScoreAbove(score int) (int64, error) {
	var c int64
	result := db.Table("user_schemas").Where("is_active = ? AND score > ?", true, score).Count(&c)
	return c, result.Error
}

func CountUsersActiveSince(t time.Time) (int64, error) {
	var c int64
	result := db.Table("user_schemas").Where("last_login >= ?", t).Count(&c)
	return c, result.Error
}

func CountUsersCreatedSince(t time.Time) (int64, error) {
	var c int64
	result := db.Table("user_schemas").Where("created_at >= ?", t).Count(&c)
	return c, result.Error
}
