package cmd

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/UnimodMapper/pkg/mapper"
)

// fixtureDir copies unimod.xml into a fresh directory so usermod.xml
// writes stay in the test's temp dir.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile("testdata/unimod.xml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unimod.xml"), data, 0644))
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--unimod", filepath.Join(dir, "unimod.xml"), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestLookupCmd(t *testing.T) {
	dir := fixtureDir(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"name to mass", []string{"lookup", "--from", "name", "--to", "mass", "Oxidation"}, "15.994915\n"},
		{"id to name", []string{"lookup", "--from", "id", "--to", "name", "4"}, "Carbamidomethyl\n"},
		{"composition to names", []string{"lookup", "--from", "composition", "--to", "name", "H(-2) O(-1)"}, "Dehydrated\nGlu->pyro-Glu\n"},
		{"first only", []string{"lookup", "--from", "mass", "--to", "id", "--first", "--", "-18.010565"}, "23\n"},
		{"specificity", []string{"lookup", "--to", "specificity", "Oxidation"}, "M@Anywhere,C@Anywhere\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, dir, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := run(t, dir, "lookup", "--from", "name", "Yadailation")
	assert.Error(t, err)

	_, err = run(t, dir, "lookup", "--from", "colour", "Oxidation")
	assert.Error(t, err)
}

func TestApproxCmd(t *testing.T) {
	dir := fixtureDir(t)

	out, err := run(t, dir, "approx", "--decimals", "0", "--", "-18")
	require.NoError(t, err)
	assert.Equal(t, "Dehydrated\t23\tH(-2)O(-1)\nGlu->pyro-Glu\t27\tH(-2)O(-1)\n", out)

	_, err = run(t, dir, "approx", "heavy")
	assert.Error(t, err)
}

type mappedOutput struct {
	Fixed    []map[string]any `json:"fixed"`
	Variable []map[string]any `json:"variable"`
}

func decodeMapped(t *testing.T, out string) mappedOutput {
	t.Helper()
	var got mappedOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	return got
}

func TestMapCmd(t *testing.T) {
	dir := fixtureDir(t)

	jsonReqs := filepath.Join(dir, "mods.json")
	require.NoError(t, os.WriteFile(jsonReqs, []byte(`{"modifications": [
		{"aa": "M", "type": "opt", "position": "any", "id": 35},
		{"aa": "C", "type": "fix", "position": "any", "name": "Carbamidomethyl"},
		{"aa": "M", "type": "fix", "position": "any", "name": "Carbamidomethyl", "neutral_loss": "unimod"}
	]}`), 0644))

	out, err := run(t, dir, "map", jsonReqs)
	require.NoError(t, err)

	got := decodeMapped(t, out)
	require.Len(t, got.Fixed, 2)
	require.Len(t, got.Variable, 1)
	assert.Equal(t, float64(35), got.Variable[0]["id"])
	assert.Equal(t, "4", got.Fixed[0]["id"])
	assert.Nil(t, got.Fixed[0]["neutral_loss"])
	assert.Equal(t, "105.024835", got.Fixed[1]["neutral_loss"])
	assert.Equal(t, float64(2), got.Fixed[1]["_id"])

	yamlReqs := filepath.Join(dir, "mods.yaml")
	require.NoError(t, os.WriteFile(yamlReqs, []byte(`
- aa: "*"
  type: variable
  position: Prot-N-term
  name: Acetyl
- aa: M
  type: variable
  position: any
  name: Yadailation
`), 0644))

	out, err = run(t, dir, "map", yamlReqs)
	require.NoError(t, err)
	got = decodeMapped(t, out)
	assert.Empty(t, got.Fixed)
	require.Len(t, got.Variable, 1)
	assert.Equal(t, "Acetyl", got.Variable[0]["name"])

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"aa": "M", "type": "opt", "position": "any"}]`), 0644))
	_, err = run(t, dir, "map", bad)
	assert.Error(t, err)
}

func TestAddCmd(t *testing.T) {
	dir := fixtureDir(t)

	out, err := run(t, dir, "add", "--name", "Heavy K", "--mass", "8.014199",
		"--composition", "C(-6) 13C(6) N(-2) 15N(2)", "--site", "K")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Heavy K (id u1")
	assert.FileExists(t, filepath.Join(dir, mapper.DefaultUsermodName))

	// mass taken from the existing Oxidation record
	out, err = run(t, dir, "add", "--name", "Oxidised", "--composition", "O")
	require.NoError(t, err)
	assert.Contains(t, out, "mass 15.994915")

	out, err = run(t, dir, "lookup", "--from", "name", "--to", "id", "Heavy K")
	require.NoError(t, err)
	assert.Equal(t, "u1\n", out)

	out, err = run(t, dir, "lookup", "--from", "name", "--to", "specificity", "Heavy K")
	require.NoError(t, err)
	assert.Equal(t, "K@Anywhere\n", out)

	csvPath := filepath.Join(dir, "labels.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,mass,composition,id\nLabel A,1.5,C,\nLabel B,2.5,N,9001\n"), 0644))
	out, err = run(t, dir, "add", "--from-csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 modifications")

	out, err = run(t, dir, "lookup", "--from", "name", "--to", "id", "Label B")
	require.NoError(t, err)
	assert.Equal(t, "9001\n", out)

	_, err = run(t, dir, "add", "--name", "Nothing")
	assert.Error(t, err)

	_, err = run(t, dir, "add", "--name", "Unknown", "--composition", "Xe(3)")
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	dir := fixtureDir(t)
	dbPath := filepath.Join(dir, "unimod.db")

	out, err := run(t, dir, "export", "--out", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exporting 9 modifications")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Modification").Scan(&count))
	assert.Equal(t, 9, count)

	_, err = run(t, dir, "export", "--out", dbPath)
	assert.Error(t, err, "existing output is not overwritten")
}

func TestMissingUnimod(t *testing.T) {
	_, err := run(t, t.TempDir(), "lookup", "Oxidation")
	assert.ErrorIs(t, err, mapper.ErrPrimaryMissing)
}
