package store

import (
	"errors"
	"fmt"

	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// StorageError embrulha falhas do log durável (append, rewrite, replay).
type StorageError struct {
	Op   string
	Kind recordlog.Kind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func duplicate(field, value string) error {
	return fmt.Errorf("%s %q: %w", field, value, ErrDuplicate)
}
