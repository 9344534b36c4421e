package services

import (
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leadscout/leadscout-backend/models"
)

var DB *gorm.DB

// InitDB opens the SQLite run-history database. All persistence helpers are
// nil-safe so the pipeline keeps working without a database (tests, one-off
// runs).
func InitDB() {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		os.MkdirAll("data", os.ModePerm)
		dbPath = filepath.Join("data", "leadscout.db")
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.LeadRun{},
		&models.QueryLog{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate database: %v", err)
	}

	log.Printf("SQLite database ready at %s", dbPath)
}

// SaveRun persists a completed pipeline run summary.
func SaveRun(run *models.LeadRun) {
	if DB == nil {
		return
	}
	if err := DB.Create(run).Error; err != nil {
		log.Printf("[DB] failed to save run %s: %v", run.RunID, err)
	}
}

// LogQueryTokens records token usage for one LLM call.
func LogQueryTokens(queryType, queryText string, tokens int) {
	if DB == nil || tokens == 0 {
		return
	}
	record := &models.QueryLog{
		QueryType:  queryType,
		QueryText:  queryText,
		TokensUsed: tokens,
	}
	if err := DB.Create(record).Error; err != nil {
		log.Printf("[DB] failed to log query tokens: %v", err)
	}
}

// GetRecentRuns returns up to limit runs, newest first.
func GetRecentRuns(limit int) ([]models.LeadRun, error) {
	if DB == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var runs []models.LeadRun
	err := DB.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
