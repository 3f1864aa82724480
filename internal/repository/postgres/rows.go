package postgres

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/harvesthub/marketplace/pkg/errors"
)

// expectOneRow turns a zero-row UPDATE into ErrNotFound
func expectOneRow(result sql.Result, resource string, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &errors.ErrNotFound{Resource: resource, ID: id.String()}
	}
	return nil
}
