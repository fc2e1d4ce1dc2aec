package settings

import (
	"errors"
	"strconv"

	domain "booking-app/internal/domain/settings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store reads and writes string settings in the settings table.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the stored value for key, or fallback when the key is absent.
func (s *Store) Get(key string, fallback string) (string, error) {
	var row domain.Setting
	err := s.db.Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return row.Value, nil
}

// Set upserts one setting.
func (s *Store) Set(key string, value string) error {
	row := domain.Setting{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes one setting. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&domain.Setting{}).Error
}

// GetBool parses a boolean setting, falling back on absence or garbage.
func (s *Store) GetBool(key string, fallback bool) bool {
	raw, err := s.Get(key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
