package repository

import (
	"errors"

	"kunjungan/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes mapped to application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// mapDBError converts a gorm/pgx error into an AppError. notFound is the
// user-facing message for missing rows.
func mapDBError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(notFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("Data sudah ada", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.NewConflictError("Data sudah ada", err)
		case pgForeignKeyViolation:
			return &models.AppError{Code: models.CodeNotFound, Message: "Data terkait tidak ditemukan", Err: err}
		case pgNotNullViolation, pgCheckViolation:
			return &models.AppError{Code: models.CodeValidation, Message: "Semua field wajib diisi", Err: err}
		}
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
