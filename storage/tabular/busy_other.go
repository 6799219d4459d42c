//go:build !windows

package tabular

func isLockViolation(error) bool { return false }
