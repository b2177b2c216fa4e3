package models

import (
	"errors"
	"fmt"
)

// ErrStrategyNotFound matches any lookup of a key absent from the catalog.
var ErrStrategyNotFound = errors.New("strategy not found")

// NotFoundError reports an unknown strategy key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("strategy %q not found", e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrStrategyNotFound
}

// Error codes carried by ErrorRecord.
const (
	CodeStrategyNotFound = "strategy_not_found"
	CodeInvalidArguments = "invalid_arguments"
	CodeInternal         = "internal_error"
)

// ErrorRecord is the flat, serializable form of a failed operation.
type ErrorRecord struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Key   string `json:"key,omitempty"`
}

// NewErrorRecord converts err into an ErrorRecord.
func NewErrorRecord(err error) ErrorRecord {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return ErrorRecord{Error: err.Error(), Code: CodeStrategyNotFound, Key: nf.Key}
	}
	return ErrorRecord{Error: err.Error(), Code: CodeInternal}
}
