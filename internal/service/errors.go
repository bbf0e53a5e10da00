package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// storageError maps repository failures onto service kinds. Domain errors
// pass through untouched.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: record already exists", ErrConflict)
	default:
		return err
	}
}

func requireWriter(p model.Principal) error {
	if !p.CanMutate() {
		return ErrPermissionDenied
	}
	return nil
}
