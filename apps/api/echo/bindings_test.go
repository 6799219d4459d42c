package echoapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_flexNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    flexNumber
		wantInt int
		isInt   bool
		wantErr bool
	}{
		{in: `1`, want: flexNumber{Value: 1, Set: true}, wantInt: 1, isInt: true},
		{in: `"1"`, want: flexNumber{Value: 1, Set: true}, wantInt: 1, isInt: true},
		{in: `" 42 "`, want: flexNumber{Value: 42, Set: true}, wantInt: 42, isInt: true},
		{in: `1.0`, want: flexNumber{Value: 1, Set: true}, wantInt: 1, isInt: true},
		{in: `34.9`, want: flexNumber{Value: 34.9, Set: true}},
		{in: `0`, want: flexNumber{Value: 0, Set: true}, isInt: true},
		{in: `null`},
		{in: `""`},
		{in: `"abc"`, wantErr: true},
		{in: `"NaN"`, wantErr: true},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n flexNumber
			err := json.Unmarshal([]byte(tt.in), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, n)
			got, ok := n.Int()
			assert.Equal(t, tt.isInt, ok)
			assert.Equal(t, tt.wantInt, got)
		})
	}
}

func Test_flexString(t *testing.T) {
	for in, want := range map[string]flexString{
		`"1234"`:  "1234",
		`1234`:    "1234",
		`1234.0`:  "1234",
		`1e3`:     "1000",
		`12.5`:    "12.5",
		`" 0042"`: " 0042",
		`null`:    "",
	} {
		var s flexString
		assert.NoError(t, json.Unmarshal([]byte(in), &s), in)
		assert.Equal(t, want, s, in)
	}
	var s flexString
	assert.Error(t, json.Unmarshal([]byte(`{}`), &s))
}
