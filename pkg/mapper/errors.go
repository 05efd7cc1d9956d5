package mapper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrimaryMissing is returned when unimod.xml cannot be found. The mapper
	// cannot answer any query without it.
	ErrPrimaryMissing = errors.New("primary unimod file not found")

	// ErrSourceMissing is returned when an explicitly listed extra file is missing.
	ErrSourceMissing = errors.New("modification file not found")

	// ErrNoOverlay is returned by overlay writes when no usermod path is configured.
	ErrNoOverlay = errors.New("no usermod overlay path configured")
)

// ConsistencyError is the panic value raised when one composition maps to
// several monoisotopic masses, which means the reference data is corrupt.
type ConsistencyError struct {
	Composition string
	Masses      []float64
}

func (e *ConsistencyError) Error() string {
	masses := make([]string, len(e.Masses))
	for i, m := range e.Masses {
		masses[i] = fmt.Sprintf("%g", m)
	}
	return fmt.Sprintf("unimod composition %s maps to different monoisotopic masses: %s",
		e.Composition, strings.Join(masses, ", "))
}
