package db

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// VisitSchema records both challenge detail views (ChallengeID set) and
// arbitrary frontend page visits (Page set). UserID is nil for anonymous hits.
type VisitSchema struct {
	ID          uint
	UserID      *uint
	ChallengeID *uint
	Page        string
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

// ChallengeVisitStats is a per-challenge aggregate over visit records.
type ChallengeVisitStats struct {
	ChallengeID    uint
	TotalVisits    int64
	UniqueVisitors int64
}

// PageStats is a per-page aggregate over visit records.
type PageStats struct {
	Page   string
	Visits int64
}

func CreateVisit(visit VisitSchema) (VisitSchema, error) {
	result := db.Create(&visit)
	if result.Error != nil {
		return VisitSchema{}, result.Error
	}
	return visit, nil
}

func CountVisits() (int64, error) {
	var c int64
	result := db.Table("visit_schemas").Count(&c)
	return c, result.Error
}

// GetTopPages returns the most visited pages, busiest first.
func GetTopPages(limit int) ([]PageStats, error) {
	var stats []PageStats
	result := db.Table("visit_schemas").
		Select("page, COUNT(*) as visits").
		Where("page <> ''").
		Group("page").Order("visits desc").Limit(limit).
		Scan(&stats)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return stats, nil
		}
		return nil, result.Error
	}
	return stats, nil
}

// GetChallengeVisitStats aggregates visit counts per challenge. Anonymous
// visits count toward the totals but not toward unique visitors.
func GetChallengeVisitStats() ([]ChallengeVisitStats, error) {
	var stats []ChallengeVisitStats
	result := db.Table("visit_schemas").
		Select("challenge_id, COUNT(*) as total_visits, COUNT(DISTINCT user_id) as unique_visitors").
		Where("challenge_id IS NOT NULL").
		Group("challenge_id").Order("challenge_id").
		Scan(&stats)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return stats, nil
		}
		return nil, result.Error
	}
	return stats, nil
}
