package tabular

import (
	"errors"
	"syscall"
)

// isBusy reports whether err means another process holds the file.
func isBusy(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY) || isLockViolation(err)
}
