package tabular

import (
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_isBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "EBUSY", err: syscall.EBUSY, want: true},
		{name: "ETXTBSY", err: syscall.ETXTBSY, want: true},
		{name: "rename EBUSY", err: &os.LinkError{Op: "rename", Old: "a.tmp", New: "a.xlsx", Err: syscall.EBUSY}, want: true},
		{name: "wrapped", err: fmt.Errorf("writing: %w", &os.PathError{Op: "open", Path: "a.xlsx", Err: syscall.EBUSY}), want: true},
		{name: "not exist", err: fs.ErrNotExist},
		{name: "permission", err: &os.PathError{Op: "open", Path: "a.xlsx", Err: fs.ErrPermission}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBusy(tt.err))
		})
	}
}
