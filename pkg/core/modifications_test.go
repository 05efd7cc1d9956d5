package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionHill(t *testing.T) {
	tests := []struct {
		name string
		comp Composition
		want string
	}{
		{"carbamidomethyl", Composition{"H": 3, "C": 2, "N": 1, "O": 1}, "C(2)H(3)N(1)O(1)"},
		{"oxygen only", Composition{"O": 1}, "O(1)"},
		{"hydrogen before others", Composition{"F": 1, "H": -1}, "H(-1)F(1)"},
		{"isotopes sorted", Composition{"2H": 3, "H": -1, "13C": 1}, "H(-1)13C(1)2H(3)"},
		{"zero counts omitted", Composition{"C": 0, "O": 2}, "O(2)"},
		{"empty", Composition{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.comp.Hill())
		})
	}
}

func TestCompositionHillIsStable(t *testing.T) {
	comp := Composition{"S": 1, "O": 3, "N": 1, "H": 7, "C": 3, "P": 1}
	first := comp.Hill()
	for i := 0; i < 50; i++ {
		require.Equal(t, first, comp.Hill())
	}
	assert.Equal(t, "C(3)H(7)N(1)O(3)P(1)S(1)", first)
}

func TestParseComposition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Composition
		wantErr bool
	}{
		{"unimod attribute form", "H(2) C(2) O", Composition{"H": 2, "C": 2, "O": 1}, false},
		{"canonical form", "C(2)H(3)N(1)O(1)", Composition{"C": 2, "H": 3, "N": 1, "O": 1}, false},
		{"negative count", "H(-1) F", Composition{"H": -1, "F": 1}, false},
		{"isotopes", "13C(1) H(-1) 2H(3)", Composition{"13C": 1, "H": -1, "2H": 3}, false},
		{"two letter symbol", "Se", Composition{"Se": 1}, false},
		{"cancelling counts", "C(1) C(-1)", Composition{}, false},
		{"lower case symbol", "c(2)", nil, true},
		{"unclosed count", "C(2", nil, true},
		{"bad count", "C(x)", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseComposition(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCompositionRoundTripsHill(t *testing.T) {
	comp := Composition{"H": 3, "C": 2, "N": 1, "O": 1}
	parsed, err := ParseComposition(comp.Hill())
	require.NoError(t, err)
	assert.True(t, comp.Equal(parsed))
}

func TestCompositionClone(t *testing.T) {
	comp := Composition{"O": 1}
	clone := comp.Clone()
	clone["O"] = 2
	assert.Equal(t, 1, comp["O"])
	assert.Nil(t, Composition(nil).Clone())
}

func TestSpecificityFirstNeutralLoss(t *testing.T) {
	spec := Specificity{
		Site: "S",
		NeutralLosses: []NeutralLossDef{
			{Raw: "0", MonoMass: 0},
			{Raw: "97.976896", MonoMass: 97.976896},
		},
	}
	nl, ok := spec.FirstNeutralLoss()
	require.True(t, ok)
	assert.Equal(t, "97.976896", nl.Raw)

	_, ok = Specificity{Site: "C"}.FirstNeutralLoss()
	assert.False(t, ok)
}

func TestOverlayDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     OverlayDefinition
		wantErr bool
	}{
		{"valid", OverlayDefinition{Name: "Yadailation", Mass: 1.5, Composition: Composition{"H": 1}}, false},
		{"missing name", OverlayDefinition{Composition: Composition{"H": 1}}, true},
		{"missing composition", OverlayDefinition{Name: "Yadailation"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				assert.True(t, errors.As(err, &verr))
			}
		})
	}
}

func TestParseSpecificity(t *testing.T) {
	tests := []struct {
		input        string
		wantSite     string
		wantPosition string
		wantErr      bool
	}{
		{"M", "M", PositionAnywhere, false},
		{"N-term", "N-term", PositionAnyNTerm, false},
		{"C-term", "C-term", PositionAnyCTerm, false},
		{"N-term@Protein N-term", "N-term", PositionProteinNTerm, false},
		{"K@Anywhere", "K", PositionAnywhere, false},
		{"K@Somewhere", "", "", true},
		{"@Anywhere", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSpecificity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSite, got.Site)
			assert.Equal(t, tt.wantPosition, got.Position)
			assert.Equal(t, ClassificationUserDefined, got.Classification)
		})
	}
}
