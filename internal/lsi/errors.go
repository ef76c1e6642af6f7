package lsi

import (
	"errors"
	"fmt"
)

var (
	// ErrDecomposition indicates the SVD routine did not converge. Fatal; the
	// engine never retries.
	ErrDecomposition = errors.New("singular value decomposition did not converge")

	// ErrInvalidRank indicates a truncation rank outside [1, rank(A)].
	ErrInvalidRank = errors.New("invalid rank")

	// ErrIdentifierMismatch indicates an identifier list whose length does not
	// match the corresponding factor's row count.
	ErrIdentifierMismatch = errors.New("identifier list does not match matrix rows")

	// ErrDuplicateIdentifier indicates a term or document identifier that is
	// already present in the space.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrNotFound indicates a term or document identifier that is not in the space.
	ErrNotFound = errors.New("identifier not found")

	// ErrDegenerateVector indicates a zero-norm vector, for which cosine
	// similarity is undefined.
	ErrDegenerateVector = errors.New("zero-norm vector")

	// ErrDimensionMismatch indicates a vector whose length does not match what
	// the space expects. Returned wrapped in a DimensionError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnknownTerm is returned by strict-mode document fold-in when the
	// frequency input references a term outside the current vocabulary.
	ErrUnknownTerm = errors.New("unknown term")
)

// DimensionError reports a vector length that does not match the expected
// dimension. It unwraps to ErrDimensionMismatch, so callers can match either
// the sentinel or the concrete type.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }
