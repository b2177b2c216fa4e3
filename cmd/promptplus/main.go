package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess          = 0 // Command completed
	ExitValidationFailed = 1 // One or more catalog records failed validation
	ExitError            = 2 // Configuration or runtime error
)

// ValidationFailureError indicates that validation ran to completion but
// found invalid records.
type ValidationFailureError struct {
	Message string
}

func (e *ValidationFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var vf *ValidationFailureError
	if errors.As(err, &vf) {
		return ExitValidationFailed
	}
	return ExitError
}
