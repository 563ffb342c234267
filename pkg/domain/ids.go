package domain

import (
	"fmt"
	"strconv"
	"strings"

	"termcolor/pkg/platform/sentinel"
)

// TermID identifies a taxonomy term owned by the host. The extension never
// creates or destroys terms; it only keys metadata by them.
type TermID int64

// maxTermIDLen bounds input before parsing; int64 has at most 19 digits.
const maxTermIDLen = 19

// ParseTermID validates a term identifier received at a trust boundary.
// Identifiers are positive base-10 integers without sign or whitespace.
func ParseTermID(s string) (TermID, error) {
	if s == "" {
		return 0, fmt.Errorf("term id is required: %w", sentinel.ErrInvalidInput)
	}
	if len(s) > maxTermIDLen || strings.TrimSpace(s) != s || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("malformed term id: %w", sentinel.ErrInvalidInput)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed term id: %w", sentinel.ErrInvalidInput)
	}
	if n <= 0 {
		return 0, fmt.Errorf("term id must be positive: %w", sentinel.ErrInvalidInput)
	}
	return TermID(n), nil
}

func (id TermID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsNil reports whether the id is the zero value.
func (id TermID) IsNil() bool {
	return id == 0
}

// Taxonomy names a host taxonomy, e.g. "category".
type Taxonomy string

func (t Taxonomy) String() string {
	return string(t)
}
