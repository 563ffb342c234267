package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can decide how to degrade.
//
// These represent factual states about resources:
// - ErrNotFound: no metadata row exists for the term and key
// - ErrUnavailable: backing store or broker temporarily unavailable
// - ErrInvalidInput: an identifier or parameter failed parsing at a trust boundary
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = errors.New("invalid input")
)
