//go:build windows

package tabular

import (
	"errors"
	"os"
	"syscall"
)

const (
	errorAccessDenied     syscall.Errno = 5
	errorSharingViolation syscall.Errno = 32
	errorLockViolation    syscall.Errno = 33
)

// isLockViolation matches the errors returned while a spreadsheet editor keeps the file open.
// Replacing a workbook held open without delete sharing fails with access denied.
func isLockViolation(err error) bool {
	if errors.Is(err, errorSharingViolation) || errors.Is(err, errorLockViolation) {
		return true
	}
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && linkErr.Op == "rename" && errors.Is(linkErr.Err, errorAccessDenied)
}
