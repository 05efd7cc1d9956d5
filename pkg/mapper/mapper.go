// Package mapper indexes unimod reference records by name, id, mass and
// composition, answers lookups across those keys and reconciles caller
// modification requests against the reference data.
package mapper

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
	"github.com/ChrisMcGann/UnimodMapper/pkg/reader/unimodxml"
)

// DefaultUsermodName is the overlay file looked up next to unimod.xml.
const DefaultUsermodName = "usermod.xml"

// Options configures a Mapper.
type Options struct {
	// UnimodPath is the mandatory primary file. Ignored when Records is set.
	UnimodPath string
	// UsermodPath is the optional overlay. Defaults to usermod.xml next to UnimodPath.
	UsermodPath string
	// ExtraPaths are read first, in order. Each must exist.
	ExtraPaths []string
	// Records replaces the primary file with already parsed records.
	Records []core.Modification
	// ApproxCacheSize bounds the approximate mass lookup cache; 0 disables it.
	ApproxCacheSize int
	Logger          *slog.Logger
}

type source struct {
	path     string
	optional bool
	primary  bool
}

// Mapper owns the record store and its index. Both are built on first use
// and kept until Invalidate is called.
type Mapper struct {
	mu        sync.Mutex
	sources   []source
	records   []core.Modification
	overlay   string
	cacheSize int
	logger    *slog.Logger

	index *Index // nil until built
}

// New creates a Mapper. Nothing is read until the first lookup.
func New(opts Options) *Mapper {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	overlay := opts.UsermodPath
	if overlay == "" && opts.Records == nil && opts.UnimodPath != "" {
		overlay = filepath.Join(filepath.Dir(opts.UnimodPath), DefaultUsermodName)
	}

	m := &Mapper{
		records:   opts.Records,
		overlay:   overlay,
		cacheSize: opts.ApproxCacheSize,
		logger:    logger,
	}

	for _, p := range opts.ExtraPaths {
		m.sources = append(m.sources, source{path: p})
	}
	if overlay != "" {
		m.sources = append(m.sources, source{path: overlay, optional: true})
	}
	if opts.Records == nil {
		m.sources = append(m.sources, source{path: opts.UnimodPath, primary: true})
	}
	return m
}

// OverlayPath returns the usermod file overlay writes go to.
func (m *Mapper) OverlayPath() string {
	return m.overlay
}

// Index returns the current index, building it if needed.
func (m *Mapper) Index() (*Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index != nil {
		return m.index, nil
	}

	records, err := m.load()
	if err != nil {
		return nil, err
	}
	m.index = build(records, m.cacheSize)
	m.logger.Debug("built modification index", "records", len(records))
	return m.index, nil
}

// Built reports whether the index is currently cached.
func (m *Mapper) Built() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index != nil
}

// Invalidate drops the record store and index. The next lookup rebuilds
// both from every source.
func (m *Mapper) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = nil
}

// load reads every source in order, followed by the in-memory records.
func (m *Mapper) load() ([]core.Modification, error) {
	var records []core.Modification

	for _, src := range m.sources {
		if _, err := os.Stat(src.path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to stat mods file %s: %w", src.path, err)
			}
			switch {
			case src.primary:
				m.logger.Error("no unimod file found", "path", src.path)
				return nil, fmt.Errorf("%w: expected at %s", ErrPrimaryMissing, src.path)
			case src.optional:
				m.logger.Info("no usermod file found", "path", src.path)
				continue
			default:
				m.logger.Warn("specified mods file not found", "path", src.path)
				return nil, fmt.Errorf("%w: expected at %s", ErrSourceMissing, src.path)
			}
		}

		m.logger.Info("parsing mods file", "path", src.path)
		mods, err := unimodxml.ReadFile(src.path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mods file: %w", err)
		}
		records = append(records, mods...)
	}

	records = append(records, m.records...)
	return records, nil
}
