package mapper

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// DefaultApproxCacheSize is used by Build.
const DefaultApproxCacheSize = 256

// Axis is one of the record attributes the index is keyed on.
type Axis string

const (
	AxisName        Axis = "name"
	AxisID          Axis = "id"
	AxisMass        Axis = "mass"
	AxisComposition Axis = "composition"
)

// ParseAxis accepts the axis names used on the command line.
func ParseAxis(s string) (Axis, error) {
	switch Axis(strings.ToLower(s)) {
	case AxisName:
		return AxisName, nil
	case AxisID:
		return AxisID, nil
	case AxisMass:
		return AxisMass, nil
	case AxisComposition, "element":
		return AxisComposition, nil
	default:
		return "", fmt.Errorf("unknown axis '%s', must be name, id, mass or composition", s)
	}
}

type approxKey struct {
	mass     float64
	decimals int
}

// Index maps each distinct name, id, mass and canonical composition to the
// record positions sharing it, in record store order. Specificities are not
// indexed. An Index is never modified after Build.
type Index struct {
	records       []core.Modification
	byName        map[string][]int
	byID          map[string][]int
	byMass        map[float64][]int
	byComposition map[string][]int

	approx *lru.Cache[approxKey, []int]
}

// Build indexes records in a single pass.
func Build(records []core.Modification) *Index {
	return build(records, DefaultApproxCacheSize)
}

func build(records []core.Modification, cacheSize int) *Index {
	idx := &Index{
		records:       records,
		byName:        make(map[string][]int),
		byID:          make(map[string][]int),
		byMass:        make(map[float64][]int),
		byComposition: make(map[string][]int),
	}

	for i, rec := range records {
		idx.byName[rec.Name] = append(idx.byName[rec.Name], i)
		idx.byID[rec.ID] = append(idx.byID[rec.ID], i)
		idx.byMass[rec.MonoMass] = append(idx.byMass[rec.MonoMass], i)
		hill := rec.Composition.Hill()
		idx.byComposition[hill] = append(idx.byComposition[hill], i)
	}

	if cacheSize > 0 {
		// lru.New only fails for a non-positive size
		idx.approx, _ = lru.New[approxKey, []int](cacheSize)
	}
	return idx
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Record returns the record at position i.
func (idx *Index) Record(i int) core.Modification {
	return idx.records[i]
}

// Records returns every record in store order. Callers must not modify it.
func (idx *Index) Records() []core.Modification {
	return idx.records
}

// Positions returns the record positions for key on axis. The key is given
// in its textual form: a float for mass, a composition string for composition.
func (idx *Index) Positions(axis Axis, key string) ([]int, error) {
	switch axis {
	case AxisName:
		return idx.byName[key], nil
	case AxisID:
		return idx.idPositions(core.StringID(key)), nil
	case AxisMass:
		mass, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid mass '%s': %w", key, err)
		}
		return idx.byMass[mass], nil
	case AxisComposition:
		comp, err := core.ParseComposition(key)
		if err != nil {
			return nil, err
		}
		return idx.byComposition[comp.Hill()], nil
	default:
		return nil, fmt.Errorf("unknown axis '%s'", axis)
	}
}

func (idx *Index) idPositions(id core.ModID) []int {
	return idx.byID[id.String()]
}

func (idx *Index) compositionPositions(comp core.Composition) []int {
	return idx.byComposition[comp.Hill()]
}

// approxPositions returns every record whose mass rounds to the rounded query.
func (idx *Index) approxPositions(mass float64, decimals int) []int {
	key := approxKey{mass: mass, decimals: decimals}
	if idx.approx != nil {
		if positions, ok := idx.approx.Get(key); ok {
			return positions
		}
	}

	var positions []int
	for i, rec := range idx.records {
		if core.MassMatches(rec.MonoMass, mass, decimals) {
			positions = append(positions, i)
		}
	}

	if idx.approx != nil {
		idx.approx.Add(key, positions)
	}
	return positions
}
