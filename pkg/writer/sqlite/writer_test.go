package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

func testRecords() []core.Modification {
	return []core.Modification{
		{
			ID:          "35",
			Name:        "Oxidation",
			MonoMass:    15.994915,
			Composition: core.Composition{"O": 1},
			Source:      "unimod.xml",
			Specificities: []core.Specificity{
				{
					Site: "M", Position: core.PositionAnywhere, Classification: "Post-translational",
					NeutralLosses: []core.NeutralLossDef{{Raw: "0", MonoMass: 0}, {Raw: "63.998285", MonoMass: 63.998285}},
				},
				{Site: "C", Position: core.PositionAnywhere, Classification: "Post-translational"},
			},
		},
		{
			Name:        "Hexose",
			MonoMass:    162.052824,
			Composition: core.Composition{"C": 6, "H": 10, "O": 5},
			Source:      "usermod.xml",
		},
	}
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unimod.db")
	require.NoError(t, Export(path, testRecords()))

	db := openDB(t, path)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Modification").Scan(&count))
	assert.Equal(t, 2, count)

	var title, composition string
	var mass float64
	require.NoError(t, db.QueryRow(
		"SELECT Title, MonoMass, Composition FROM Modification WHERE RecordId = ?", "35",
	).Scan(&title, &mass, &composition))
	assert.Equal(t, "Oxidation", title)
	assert.Equal(t, 15.994915, mass)
	assert.Equal(t, "O(1)", composition)

	var recordID sql.NullString
	require.NoError(t, db.QueryRow("SELECT RecordId FROM Modification WHERE Position = 1").Scan(&recordID))
	assert.False(t, recordID.Valid)

	rows, err := db.Query("SELECT Symbol, Number FROM Element WHERE Position = 1 ORDER BY rowid")
	require.NoError(t, err)
	var symbols []string
	for rows.Next() {
		var symbol string
		var n int
		require.NoError(t, rows.Scan(&symbol, &n))
		symbols = append(symbols, symbol)
	}
	require.NoError(t, rows.Err())
	rows.Close()
	assert.Equal(t, []string{"C", "H", "O"}, symbols)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Specificity WHERE Position = 0").Scan(&count))
	assert.Equal(t, 2, count)

	var loss string
	require.NoError(t, db.QueryRow(
		"SELECT MonoMass FROM NeutralLoss WHERE Position = 0 AND Site = 'M' AND MonoMass != '0'",
	).Scan(&loss))
	assert.Equal(t, "63.998285", loss)

	var version, recordCount int
	require.NoError(t, db.QueryRow("SELECT version, RecordCount FROM HeaderTable").Scan(&version, &recordCount))
	assert.Equal(t, SchemaVersion, version)
	assert.Equal(t, 2, recordCount)
}

func TestWriterRejectsDuplicatePosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.db")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	records := testRecords()
	require.NoError(t, w.WriteModification(0, records[0]))
	assert.Error(t, w.WriteModification(0, records[1]))
	assert.Equal(t, 1, w.Written())
}

func TestNewWriterBadPath(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "missing", "dir", "out.db"))
	assert.Error(t, err)
}
