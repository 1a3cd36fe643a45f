package shared

import "errors"

var (
	// ErrNotFound indicates a resource could not be located.
	ErrNotFound = errors.New("not found")
	// ErrClientRequired indicates a request arrived without a client scope.
	ErrClientRequired = errors.New("client id required")
	// ErrInvalidPeriodKey indicates a period string not shaped YYYY-MM.
	ErrInvalidPeriodKey = errors.New("invalid period key")
	// ErrPeriodClosed rejects postings into a closed period.
	ErrPeriodClosed = errors.New("period is closed")
)
