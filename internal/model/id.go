package model

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "bistro/internal/errors"
)

// ParseID converts a client-supplied hex string into an ObjectID.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", apperrors.ErrMalformedIdentifier, s)
	}
	return id, nil
}

// ParseIDs converts every element of ss, failing on the first malformed one.
// Order and duplicates are preserved.
func ParseIDs(ss []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(ss))
	for _, s := range ss {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
