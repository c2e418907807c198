package config

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "crewsync.com/crewsync/internal/models"
)

func NewDatabaseClient(dsn string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Task{},
		&model.TaskAssignment{},
		&model.TaskDocument{},
		&model.SmsCodeRequest{},
		&model.Profile{},
		&model.ChatMessage{},
		&model.Notification{},
		&model.TimeEntry{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	return db
}
