// Package sqlite exports the modification record store to a SQLite database
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// Date format for HeaderTable (ISO 8601)
const headerDateFormat = "2006-01-02"

// SchemaVersion is stored in HeaderTable
const SchemaVersion = 1

// Writer handles writing modification records to SQLite database files.
// Records are keyed by their position in the record store, the only
// attribute guaranteed to be unique.
type Writer struct {
	db              *sql.DB
	outputPath      string
	modStmt         *sql.Stmt
	elementStmt     *sql.Stmt
	specificityStmt *sql.Stmt
	lossStmt        *sql.Stmt
	written         int
}

// NewWriter creates a new SQLite writer
func NewWriter(outputPath string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS Modification (
		Position INTEGER PRIMARY KEY,
		RecordId TEXT,
		Title TEXT NOT NULL,
		MonoMass DOUBLE,
		Composition TEXT,
		Source TEXT
	);
	CREATE INDEX IF NOT EXISTS ModificationTitle ON Modification(Title);
	CREATE INDEX IF NOT EXISTS ModificationRecordId ON Modification(RecordId);
	CREATE INDEX IF NOT EXISTS ModificationMonoMass ON Modification(MonoMass);

	CREATE TABLE IF NOT EXISTS Element (
		Position INTEGER REFERENCES Modification(Position),
		Symbol TEXT,
		Number INTEGER
	);

	CREATE TABLE IF NOT EXISTS Specificity (
		Position INTEGER REFERENCES Modification(Position),
		Site TEXT,
		SitePosition TEXT,
		Classification TEXT
	);

	CREATE TABLE IF NOT EXISTS NeutralLoss (
		Position INTEGER REFERENCES Modification(Position),
		Site TEXT,
		SitePosition TEXT,
		MonoMass TEXT
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		CreationDate TEXT,
		RecordCount INTEGER
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.modStmt, err = w.db.Prepare(`
		INSERT INTO Modification (Position, RecordId, Title, MonoMass, Composition, Source)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare modification statement: %w", err)
	}

	w.elementStmt, err = w.db.Prepare(`
		INSERT INTO Element (Position, Symbol, Number) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare element statement: %w", err)
	}

	w.specificityStmt, err = w.db.Prepare(`
		INSERT INTO Specificity (Position, Site, SitePosition, Classification) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare specificity statement: %w", err)
	}

	w.lossStmt, err = w.db.Prepare(`
		INSERT INTO NeutralLoss (Position, Site, SitePosition, MonoMass) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare neutral loss statement: %w", err)
	}

	return nil
}

// WriteModification writes a single record and its child rows
func (w *Writer) WriteModification(position int, mod core.Modification) error {
	var recordID interface{} = nil
	if mod.ID != "" {
		recordID = mod.ID
	}

	_, err := w.modStmt.Exec(position, recordID, mod.Name, mod.MonoMass, mod.Composition.Hill(), mod.Source)
	if err != nil {
		return fmt.Errorf("failed to insert modification %s: %w", mod.Name, err)
	}

	for _, symbol := range mod.Composition.Symbols() {
		if _, err := w.elementStmt.Exec(position, symbol, mod.Composition[symbol]); err != nil {
			return fmt.Errorf("failed to insert element %s of %s: %w", symbol, mod.Name, err)
		}
	}

	for _, spec := range mod.Specificities {
		if _, err := w.specificityStmt.Exec(position, spec.Site, spec.Position, spec.Classification); err != nil {
			return fmt.Errorf("failed to insert specificity %s of %s: %w", spec.Site, mod.Name, err)
		}
		for _, nl := range spec.NeutralLosses {
			if _, err := w.lossStmt.Exec(position, spec.Site, spec.Position, nl.Raw); err != nil {
				return fmt.Errorf("failed to insert neutral loss of %s: %w", mod.Name, err)
			}
		}
	}

	w.written++
	return nil
}

// Written returns the number of records written so far
func (w *Writer) Written() int {
	return w.written
}

// Finalize writes the header table and closes the database
func (w *Writer) Finalize() error {
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, RecordCount)
		VALUES (?, ?, ?)
	`, SchemaVersion, time.Now().Format(headerDateFormat), w.written)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return w.Close()
}

// Close closes the prepared statements and the database connection
// without writing the header.
func (w *Writer) Close() error {
	for _, stmt := range []*sql.Stmt{w.modStmt, w.elementStmt, w.specificityStmt, w.lossStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Export writes every record, in order, to a new database at outputPath
func Export(outputPath string, records []core.Modification) error {
	w, err := NewWriter(outputPath)
	if err != nil {
		return err
	}

	for i, mod := range records {
		if err := w.WriteModification(i, mod); err != nil {
			w.Close()
			return err
		}
	}

	return w.Finalize()
}
