package mapper

import (
	"slices"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// project maps record positions to one attribute, keeping order.
func project[T any](idx *Index, positions []int, get func(core.Modification) T) []T {
	out := make([]T, 0, len(positions))
	for _, p := range positions {
		out = append(out, get(idx.records[p]))
	}
	return out
}

// first returns the attribute of the lowest record position.
func first[T any](idx *Index, positions []int, get func(core.Modification) T) (T, bool) {
	var zero T
	if len(positions) == 0 {
		return zero, false
	}
	return get(idx.records[slices.Min(positions)]), true
}

func recName(m core.Modification) string                  { return m.Name }
func recID(m core.Modification) string                    { return m.ID }
func recMass(m core.Modification) float64                 { return m.MonoMass }
func recComposition(m core.Modification) core.Composition { return m.Composition.Clone() }
func recSpecificities(m core.Modification) []core.Specificity {
	return slices.Clone(m.Specificities)
}

// Name lookups

func (idx *Index) NameToIDList(name string) []string {
	return project(idx, idx.byName[name], recID)
}

func (idx *Index) NameToFirstID(name string) (string, bool) {
	return first(idx, idx.byName[name], recID)
}

func (idx *Index) NameToMassList(name string) []float64 {
	return project(idx, idx.byName[name], recMass)
}

func (idx *Index) NameToFirstMass(name string) (float64, bool) {
	return first(idx, idx.byName[name], recMass)
}

func (idx *Index) NameToCompositionList(name string) []core.Composition {
	return project(idx, idx.byName[name], recComposition)
}

func (idx *Index) NameToFirstComposition(name string) (core.Composition, bool) {
	return first(idx, idx.byName[name], recComposition)
}

// NameToSpecificityList returns the specificities of every record named name.
func (idx *Index) NameToSpecificityList(name string) [][]core.Specificity {
	return project(idx, idx.byName[name], recSpecificities)
}

// ID lookups

func (idx *Index) IDToNameList(id core.ModID) []string {
	return project(idx, idx.idPositions(id), recName)
}

func (idx *Index) IDToFirstName(id core.ModID) (string, bool) {
	return first(idx, idx.idPositions(id), recName)
}

func (idx *Index) IDToMassList(id core.ModID) []float64 {
	return project(idx, idx.idPositions(id), recMass)
}

func (idx *Index) IDToFirstMass(id core.ModID) (float64, bool) {
	return first(idx, idx.idPositions(id), recMass)
}

func (idx *Index) IDToCompositionList(id core.ModID) []core.Composition {
	return project(idx, idx.idPositions(id), recComposition)
}

func (idx *Index) IDToFirstComposition(id core.ModID) (core.Composition, bool) {
	return first(idx, idx.idPositions(id), recComposition)
}

// Mass lookups use exact float equality. See ApproxMassToNameList for
// rounded matching.

func (idx *Index) MassToNameList(mass float64) []string {
	return project(idx, idx.byMass[mass], recName)
}

func (idx *Index) MassToFirstName(mass float64) (string, bool) {
	return first(idx, idx.byMass[mass], recName)
}

func (idx *Index) MassToIDList(mass float64) []string {
	return project(idx, idx.byMass[mass], recID)
}

func (idx *Index) MassToFirstID(mass float64) (string, bool) {
	return first(idx, idx.byMass[mass], recID)
}

func (idx *Index) MassToCompositionList(mass float64) []core.Composition {
	return project(idx, idx.byMass[mass], recComposition)
}

func (idx *Index) MassToFirstComposition(mass float64) (core.Composition, bool) {
	return first(idx, idx.byMass[mass], recComposition)
}

// Composition lookups match on the canonical form, so key order and
// zero counts do not matter.

func (idx *Index) CompositionToNameList(comp core.Composition) []string {
	return project(idx, idx.compositionPositions(comp), recName)
}

func (idx *Index) CompositionToFirstName(comp core.Composition) (string, bool) {
	return first(idx, idx.compositionPositions(comp), recName)
}

func (idx *Index) CompositionToIDList(comp core.Composition) []string {
	return project(idx, idx.compositionPositions(comp), recID)
}

func (idx *Index) CompositionToFirstID(comp core.Composition) (string, bool) {
	return first(idx, idx.compositionPositions(comp), recID)
}

func (idx *Index) CompositionToMassList(comp core.Composition) []float64 {
	return project(idx, idx.compositionPositions(comp), recMass)
}

func (idx *Index) CompositionToFirstMass(comp core.Composition) (float64, bool) {
	return first(idx, idx.compositionPositions(comp), recMass)
}

// CompositionToMass returns the mass shared by every record with the given
// composition. It panics with a *ConsistencyError when the records disagree,
// which means the reference data itself is broken.
func (idx *Index) CompositionToMass(comp core.Composition) (float64, bool) {
	masses := idx.CompositionToMassList(comp)
	if len(masses) == 0 {
		return 0, false
	}
	distinct := slices.Compact(slices.Sorted(slices.Values(masses)))
	if len(distinct) > 1 {
		panic(&ConsistencyError{Composition: comp.Hill(), Masses: distinct})
	}
	return distinct[0], true
}

// Approximate mass lookups

// ApproxMassToIDList returns the ids of records whose mass, rounded to
// decimals places, equals the rounded query mass.
func (idx *Index) ApproxMassToIDList(mass float64, decimals int) []string {
	return project(idx, idx.approxPositions(mass, decimals), recID)
}

// ApproxMassToNameList is ApproxMassToIDList returning names.
func (idx *Index) ApproxMassToNameList(mass float64, decimals int) []string {
	return project(idx, idx.approxPositions(mass, decimals), recName)
}

// ApproxMassToCompositionList is ApproxMassToIDList returning compositions.
func (idx *Index) ApproxMassToCompositionList(mass float64, decimals int) []core.Composition {
	return project(idx, idx.approxPositions(mass, decimals), recComposition)
}
