package db

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db *gorm.DB
)

func dialector(connectURL string) gorm.Dialector {
	if strings.HasPrefix(connectURL, "sqlite:") {
		split := strings.SplitN(connectURL, ":", 2)
		filename := split[1]
		return sqlite.Open(fmt.Sprintf("%s?mode=rwc", filename))
	} else {
		return postgres.Open(connectURL)
	}
}

func Connect(connectURL string) {
	var err error

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			IgnoreRecordNotFoundError: true, // Ignore ErrRecordNotFound error for logger
		},
	)

	db, err = gorm.Open(dialector(connectURL), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger,
	})
	if err != nil {
		log.Fatalf("Failed to connect database %s: %v", connectURL, err)
	}

	slog.Info("Connected to DB")

	err = db.AutoMigrate(&UserSchema{}, &SolveSchema{},
		&ChallengeSchema{}, &SubmissionSchema{},
		&VisitSchema{}, &AdSchema{})
	if err != nil {
		log.Fatalln("Failed to auto migrate:", err)
	}
}

// Ping verifies the underlying connection is alive. Used by the health endpoint.
func Ping() error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
