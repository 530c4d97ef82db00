package repository

import (
	"errors"
)

// ErrNotFound is returned when a requested resource does not exist
var ErrNotFound = errors.New("resource not found")

// ErrDuplicateKey is returned when a unique constraint is violated
var ErrDuplicateKey = errors.New("duplicate key")

// ErrSerialization is returned when Oracle aborts a serializable
// transaction (ORA-08177). Callers may retry.
var ErrSerialization = errors.New("serialization failure")

// Error format strings for repository operations
const (
	errFmtBeginTx      = "failed to begin transaction: %w"
	errFmtCommitTx     = "failed to commit transaction: %w"
	errFmtRowsAffected = "failed to get rows affected: %w"
)

// oraCoder is implemented by godror errors
type oraCoder interface {
	Code() int
}

const (
	oraUniqueViolation  = 1    // ORA-00001
	oraCannotSerialize  = 8177 // ORA-08177
	oraDeadlockDetected = 60   // ORA-00060
)

// classifyOracleError maps driver error codes onto the repository
// sentinels so upper layers never match on message text.
func classifyOracleError(err error) error {
	if err == nil {
		return nil
	}
	var coder oraCoder
	if errors.As(err, &coder) {
		switch coder.Code() {
		case oraUniqueViolation:
			return errors.Join(ErrDuplicateKey, err)
		case oraCannotSerialize, oraDeadlockDetected:
			return errors.Join(ErrSerialization, err)
		}
	}
	return err
}

// IsDuplicateKey reports whether err is a unique-constraint violation
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsSerialization reports whether err is a retryable serialization failure
func IsSerialization(err error) bool {
	return errors.Is(err, ErrSerialization)
}
