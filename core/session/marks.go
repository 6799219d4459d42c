package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// InvalidMarksError is returned when the typed marks cannot be submitted. No request is made.
type InvalidMarksError struct {
	Input string
	Max   float64
}

func (err *InvalidMarksError) Error() string {
	return fmt.Sprintf("Please enter valid marks (0-%s)", strconv.FormatFloat(err.Max, 'f', -1, 64))
}

// ParseMarks accepts a number within [0, total]. Empty input, non numeric input
// and values out of range are rejected.
func ParseMarks(input string, total float64) (float64, error) {
	s := strings.TrimSpace(input)
	v, err := strconv.ParseFloat(s, 64)
	if s == "" || err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > total {
		return 0, &InvalidMarksError{Input: input, Max: total}
	}
	return v, nil
}
