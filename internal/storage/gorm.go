package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

type CommandRecord struct {
	ID        string `gorm:"primaryKey"`
	ServerID  string `gorm:"index"`
	Command   string
	CreatedAt time.Time
}

// Settings keys the panel persists.
const (
	SettingTheme   = "theme"
	SettingSidebar = "sidebar_collapsed"
)

// GormStore holds panel-local state: UI settings and per-server console
// command history. Server configuration itself lives with the backend.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(path string) (*GormStore, error) {
	newLogger := gormlogger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		gormlogger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  gormlogger.Error,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Setting{}, &CommandRecord{}); err != nil {
		return nil, fmt.Errorf("error migrating database: %w", err)
	}

	store := &GormStore{db: db}
	if err := store.initDefaultSettings(); err != nil {
		return nil, fmt.Errorf("error initializing settings: %w", err)
	}
	return store, nil
}

func (s *GormStore) initDefaultSettings() error {
	defaults := map[string]string{
		SettingTheme:   "dark",
		SettingSidebar: "false",
	}

	for key, value := range defaults {
		var setting Setting
		result := s.db.First(&setting, "key = ?", key)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				if err := s.db.Create(&Setting{Key: key, Value: value}).Error; err != nil {
					return err
				}
			} else {
				return result.Error
			}
		}
	}
	return nil
}

func (s *GormStore) GetSetting(key string) (string, error) {
	var setting Setting
	if err := s.db.First(&setting, "key = ?", key).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *GormStore) SetSetting(key, value string) error {
	return s.db.Save(&Setting{Key: key, Value: value}).Error
}

// RecordCommand appends a console command to the history.
func (s *GormStore) RecordCommand(serverID, command string) error {
	rec := &CommandRecord{
		ID:        uuid.NewString(),
		ServerID:  serverID,
		Command:   command,
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Create(rec).Error
}

// RecentCommands returns the newest history entries for a server, newest
// first.
func (s *GormStore) RecentCommands(serverID string, limit int) ([]CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []CommandRecord
	err := s.db.
		Where("server_id = ?", serverID).
		Order("created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
