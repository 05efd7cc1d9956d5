package customcsv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

func TestRead(t *testing.T) {
	input := `name,mass,composition,id
Yadailation,18.5,C(1)H(2),
# comment lines are skipped

Heavy,6.020129,13C(6) C(-6),u9
`
	defs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	assert.Equal(t, core.OverlayDefinition{
		Name:        "Yadailation",
		Mass:        18.5,
		Composition: core.Composition{"C": 1, "H": 2},
	}, defs[0])
	assert.Equal(t, "u9", defs[1].ID)
	assert.Equal(t, core.Composition{"13C": 6, "C": -6}, defs[1].Composition)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"too few fields", "name,mass,composition\nYada,1.0\n", "line 2"},
		{"bad mass", "name,mass,composition\nYada,heavy,C(1)\n", "invalid mass value"},
		{"bad composition", "name,mass,composition\nYada,1.0,c(1)\n", "line 2"},
		{"empty name", "name,mass,composition\n,1.0,C(1)\n", "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadHeaderOnly(t *testing.T) {
	defs, err := Read(strings.NewReader("name,mass,composition\n"))
	require.NoError(t, err)
	assert.Empty(t, defs)

	defs, err = Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, defs)
}
