package booking

import (
	"errors"
	"fmt"

	"booking-app/internal/domain/squares"
	"booking-app/internal/domain/users"

	"gorm.io/gorm"
)

// UserDirectory resolves users by id for the materializer.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Get(id uint) (*users.User, error) {
	var u users.User
	err := d.db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, users.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SquareDirectory resolves squares by id for the materializer.
type SquareDirectory struct {
	db *gorm.DB
}

func NewSquareDirectory(db *gorm.DB) *SquareDirectory {
	return &SquareDirectory{db: db}
}

func (d *SquareDirectory) Get(id uint) (*squares.Square, error) {
	var sq squares.Square
	err := d.db.First(&sq, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("square %d: %w", id, squares.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &sq, nil
}
