package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateKey signals a storage-level uniqueness violation. The unique
// index is the authoritative guard against duplicate inserts racing past an
// existence pre-check.
var ErrDuplicateKey = errors.New("duplicate key")

const pgUniqueViolation = "23505"

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ErrDuplicateKey
	}
	return err
}
