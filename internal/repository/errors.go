package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrSlugTaken is returned when a unique slug is already in use
	ErrSlugTaken = errors.New("slug already in use")
)

// translate maps gorm errors onto repository sentinels
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrSlugTaken
	default:
		return err
	}
}
