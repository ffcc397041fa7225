package repositories

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	domainerrors "payflow.backend/internal/domain/errors"
)

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateWriteError maps driver constraint failures onto domain errors.
// gorm translates errors for its own dialectors; lib/pq errors reach us raw
// when the pool is opened through database/sql.
func translateWriteError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ConstraintViolation(op + ": duplicate key")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return domainerrors.ReferenceError(op + ": foreign key violated")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return domainerrors.ConstraintViolation(op + ": " + pqErr.Constraint)
		case pgForeignKeyViolation:
			return domainerrors.ReferenceError(op + ": " + pqErr.Constraint)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
