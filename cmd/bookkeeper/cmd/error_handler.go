package cmd

import (
	engerrors "golang-bookkeeping-engine/pkg/errors"
)

// ExitCode maps an error to the process exit code: categorized engine
// errors carry their own code, anything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if engineErr, ok := engerrors.As(err); ok {
		return engineErr.ExitCode()
	}
	return 1
}
