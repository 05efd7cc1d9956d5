// Package core provides the modification records and request types shared by
// the readers, the mapper and the writers.
package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Classification that is dropped while parsing
const ClassificationArtefact = "Artefact"

// Unimod specificity positions
const (
	PositionAnywhere     = "Anywhere"
	PositionAnyNTerm     = "Any N-term"
	PositionAnyCTerm     = "Any C-term"
	PositionProteinNTerm = "Protein N-term"
	PositionProteinCTerm = "Protein C-term"
)

// Modification is a single reference record from unimod.xml or usermod.xml.
// Only its position in the record store is guaranteed to be unique.
type Modification struct {
	ID            string // record_id, native string form
	Name          string // title
	MonoMass      float64
	Composition   Composition
	Specificities []Specificity
	Source        string // file the record was read from
}

// Specificity is one (site, position, classification) entry of a record.
type Specificity struct {
	Site           string // amino acid, "N-term" or "C-term"
	Position       string // Anywhere, Any N-term, Protein N-term, ...
	Classification string
	NeutralLosses  []NeutralLossDef
}

// NeutralLossDef is a neutral loss defined for a specificity.
// Raw keeps the mass exactly as written in the source file.
type NeutralLossDef struct {
	Raw      string
	MonoMass float64
}

// FirstNeutralLoss returns the first non-zero neutral loss of the specificity.
func (s Specificity) FirstNeutralLoss() (NeutralLossDef, bool) {
	for _, nl := range s.NeutralLosses {
		if nl.MonoMass != 0 {
			return nl, true
		}
	}
	return NeutralLossDef{}, false
}

// Composition maps element symbols to signed counts. Zero counts are never stored.
type Composition map[string]int

var hillMajors = []string{"C", "H"}

// Symbols returns the element symbols in canonical order: C and H first,
// then the remaining symbols sorted. Zero counts are skipped.
func (c Composition) Symbols() []string {
	symbols := make([]string, 0, len(c))
	for _, major := range hillMajors {
		if c[major] != 0 {
			symbols = append(symbols, major)
		}
	}

	rest := make([]string, 0, len(c))
	for symbol, n := range c {
		if n == 0 || symbol == "C" || symbol == "H" {
			continue
		}
		rest = append(rest, symbol)
	}
	sort.Strings(rest)

	return append(symbols, rest...)
}

// Hill renders the canonical composition key, each symbol as Symbol(count).
func (c Composition) Hill() string {
	var b strings.Builder
	for _, symbol := range c.Symbols() {
		fmt.Fprintf(&b, "%s(%d)", symbol, c[symbol])
	}
	return b.String()
}

// Clone returns a copy that does not share storage with c.
func (c Composition) Clone() Composition {
	if c == nil {
		return nil
	}
	out := make(Composition, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Equal reports whether both compositions hold the same non-zero counts.
func (c Composition) Equal(other Composition) bool {
	return c.Hill() == other.Hill()
}

// ParseComposition parses a composition string. It accepts the canonical
// form "C(2)H(3)N(1)O(1)" as well as unimod's attribute form "H(3) C(2) N O",
// where a missing count means 1. Symbols may carry an isotope prefix ("13C").
// Repeated symbols are summed and zero totals dropped.
func ParseComposition(s string) (Composition, error) {
	comp := make(Composition)
	rest := strings.TrimSpace(s)

	for rest != "" {
		// Symbol: optional isotope digits, then an upper case letter, then lower case letters
		i := 0
		for i < len(rest) && unicode.IsDigit(rune(rest[i])) {
			i++
		}
		if i >= len(rest) || !unicode.IsUpper(rune(rest[i])) {
			return nil, fmt.Errorf("invalid composition '%s': expected element symbol at '%s'", s, rest)
		}
		i++
		for i < len(rest) && unicode.IsLower(rune(rest[i])) {
			i++
		}
		symbol := rest[:i]
		rest = rest[i:]

		count := 1
		if strings.HasPrefix(rest, "(") {
			end := strings.Index(rest, ")")
			if end < 0 {
				return nil, fmt.Errorf("invalid composition '%s': unclosed count for %s", s, symbol)
			}
			n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
			if err != nil {
				return nil, fmt.Errorf("invalid composition '%s': bad count for %s: %w", s, symbol, err)
			}
			count = n
			rest = rest[end+1:]
		}

		comp[symbol] += count
		if comp[symbol] == 0 {
			delete(comp, symbol)
		}
		rest = strings.TrimLeft(rest, " \t")
	}

	return comp, nil
}

// OverlayDefinition is a user supplied modification destined for usermod.xml.
// An empty ID is replaced by a synthesized one when the overlay is written.
// Definitions without specificities match requests for any site.
type OverlayDefinition struct {
	Name          string
	Mass          float64
	Composition   Composition
	ID            string
	Specificities []Specificity
}

// OverlayFromModification converts a parsed record back into a definition.
func OverlayFromModification(mod Modification) OverlayDefinition {
	return OverlayDefinition{
		Name:          mod.Name,
		Mass:          mod.MonoMass,
		Composition:   mod.Composition.Clone(),
		ID:            mod.ID,
		Specificities: mod.Specificities,
	}
}

// Validate checks that a definition can be written to the overlay.
func (d OverlayDefinition) Validate() error {
	var errs []string
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(d.Composition) == 0 {
		errs = append(errs, "composition is required")
	}
	if len(errs) > 0 {
		return &ValidationError{
			Field:   "OverlayDefinition",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// ValidationError represents an invalid value supplied by the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// ClassificationUserDefined is assigned to specificities given on the command line
const ClassificationUserDefined = "Other"

// ParseSpecificity parses "SITE" or "SITE@POSITION", e.g. "M", "N-term@Protein N-term".
// Without a position, terminal sites default to the matching Any terminus and
// residues to Anywhere.
func ParseSpecificity(s string) (Specificity, error) {
	site, position, hasPosition := strings.Cut(strings.TrimSpace(s), "@")
	site = strings.TrimSpace(site)
	if site == "" {
		return Specificity{}, fmt.Errorf("invalid specificity '%s': site is required", s)
	}

	if !hasPosition {
		switch site {
		case "N-term":
			position = PositionAnyNTerm
		case "C-term":
			position = PositionAnyCTerm
		default:
			position = PositionAnywhere
		}
	}

	position = strings.TrimSpace(position)
	switch position {
	case PositionAnywhere, PositionAnyNTerm, PositionAnyCTerm, PositionProteinNTerm, PositionProteinCTerm:
	default:
		return Specificity{}, fmt.Errorf("invalid specificity '%s': unknown position '%s'", s, position)
	}

	return Specificity{
		Site:           site,
		Position:       position,
		Classification: ClassificationUserDefined,
	}, nil
}
