package mapper

import (
	"strings"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// AnySite matches every specificity site in a request.
const AnySite = "*"

// positionPreferences maps a request position qualifier to the unimod
// positions it accepts, most preferred first. A nil list accepts any
// position but still prefers Anywhere.
var positionPreferences = map[string][]string{
	"any":         nil,
	"anywhere":    {core.PositionAnywhere},
	"prot-n-term": {core.PositionProteinNTerm, core.PositionAnyNTerm},
	"prot-c-term": {core.PositionProteinCTerm, core.PositionAnyCTerm},
	"n-term":      {core.PositionAnyNTerm},
	"pep-n-term":  {core.PositionAnyNTerm},
	"c-term":      {core.PositionAnyCTerm},
	"pep-c-term":  {core.PositionAnyCTerm},
}

func acceptedPositions(qualifier string) []string {
	key := strings.ToLower(strings.TrimSpace(qualifier))
	if key == "" {
		return nil
	}
	if positions, ok := positionPreferences[key]; ok {
		return positions
	}
	// unimod position names are accepted verbatim
	return []string{qualifier}
}

func siteMatches(aa string, spec core.Specificity) bool {
	return aa == AnySite || aa == spec.Site
}

// matchSpecificity finds the specificity of rec that satisfies the request
// site and position. Records without specificities satisfy every request and
// return a zero Specificity.
func matchSpecificity(rec core.Modification, aa, position string) (core.Specificity, bool) {
	if len(rec.Specificities) == 0 {
		return core.Specificity{}, true
	}

	positions := acceptedPositions(position)
	if positions == nil {
		positions = []string{core.PositionAnywhere, ""}
	}

	for _, want := range positions {
		for _, spec := range rec.Specificities {
			if !siteMatches(aa, spec) {
				continue
			}
			if want == "" || spec.Position == want {
				return spec, true
			}
		}
	}
	return core.Specificity{}, false
}

// resolution is the outcome of a single request: either a mapped
// modification or nothing.
type resolution struct {
	mod   core.MappedModification
	found bool
}

// resolveNeutralLoss applies the request hint to the matched specificity.
func resolveNeutralLoss(hint *core.NeutralLossHint, spec core.Specificity) core.NeutralLoss {
	switch {
	case hint == nil:
		return core.NoNeutralLoss()
	case !hint.Sentinel:
		return core.EmptyNeutralLoss()
	}
	if nl, ok := spec.FirstNeutralLoss(); ok {
		return core.NeutralLossValue(nl.Raw)
	}
	return core.EmptyNeutralLoss()
}

func (m *Mapper) resolve(idx *Index, position int, req core.Request) resolution {
	var candidates []int
	if req.ID != nil {
		candidates = idx.idPositions(*req.ID)
	} else {
		candidates = idx.byName[req.Name]
	}

	// candidates are already in record order, so the first match is the
	// lowest position
	for _, p := range candidates {
		rec := idx.records[p]
		spec, ok := matchSpecificity(rec, req.AA, req.Position)
		if !ok {
			continue
		}

		id := core.StringID(rec.ID)
		if req.ID != nil {
			id = *req.ID
		}

		return resolution{
			found: true,
			mod: core.MappedModification{
				AA:           req.AA,
				Position:     req.Position,
				Name:         rec.Name,
				Mass:         rec.MonoMass,
				Composition:  rec.Composition.Clone(),
				ID:           id,
				NeutralLoss:  resolveNeutralLoss(req.NeutralLoss, spec),
				RequestIndex: position,
				Org:          req.Clone(),
				Unimod:       true,
			},
		}
	}
	return resolution{}
}

// MapMods resolves each request against the reference records and splits the
// results into fixed and variable modifications, keeping request order.
// Requests that match no record are dropped; their position is still
// consumed, so RequestIndex values may have gaps. Malformed requests are
// reported as a *core.RequestError before anything is resolved.
func (m *Mapper) MapMods(reqs []core.Request) (*core.MappedMods, error) {
	for i, req := range reqs {
		if err := req.Validate(i); err != nil {
			return nil, err
		}
	}

	idx, err := m.Index()
	if err != nil {
		return nil, err
	}

	result := &core.MappedMods{
		Fixed:    []core.MappedModification{},
		Variable: []core.MappedModification{},
	}

	for i, req := range reqs {
		res := m.resolve(idx, i, req)
		if !res.found {
			key := req.Name
			if req.ID != nil {
				key = req.ID.String()
			}
			m.logger.Debug("dropping unresolved modification",
				"request", i, "key", key, "aa", req.AA, "position", req.Position)
			continue
		}

		// Validate already rejected unknown types
		modType, _ := core.ParseModType(req.Type)
		if modType == core.ModTypeFixed {
			result.Fixed = append(result.Fixed, res.mod)
		} else {
			result.Variable = append(result.Variable, res.mod)
		}
	}

	return result, nil
}
