package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "bistro/internal/errors"
)

// storeErr maps driver errors onto the service taxonomy.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.ErrNotFound
	}
	return apperrors.Upstream(op, err)
}
