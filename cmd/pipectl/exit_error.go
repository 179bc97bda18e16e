// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pipestore/pipectl/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeOf maps an Execute error to the process exit code.
func exitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	if exitErr, ok := asExitError(err); ok && exitErr.Code.Validate() == nil {
		return exitErr.Code
	}
	return types.ExitFailure
}
