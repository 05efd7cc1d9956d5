package mapper

import (
	"fmt"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
	"github.com/ChrisMcGann/UnimodMapper/pkg/writer/usermod"
)

// WriteOverlay appends def to the usermod overlay and invalidates the index,
// so the next lookup sees the new entry. The returned definition carries the
// id that was written.
func (m *Mapper) WriteOverlay(def core.OverlayDefinition) (core.OverlayDefinition, error) {
	if m.overlay == "" {
		return def, ErrNoOverlay
	}

	written, err := usermod.Append(m.overlay, def)
	if err != nil {
		return def, fmt.Errorf("failed to write overlay entry %s: %w", def.Name, err)
	}
	m.logger.Info("wrote usermod entry", "path", m.overlay, "name", written.Name, "id", written.ID)

	m.Invalidate()
	return written, nil
}

// ImportOverlay writes every definition in order and invalidates once.
// Entries written before a failure stay in the overlay.
func (m *Mapper) ImportOverlay(defs []core.OverlayDefinition) ([]core.OverlayDefinition, error) {
	if m.overlay == "" {
		return nil, ErrNoOverlay
	}
	defer m.Invalidate()

	written := make([]core.OverlayDefinition, 0, len(defs))
	for i, def := range defs {
		out, err := usermod.Append(m.overlay, def)
		if err != nil {
			return written, fmt.Errorf("failed to write overlay entry %d (%s): %w", i+1, def.Name, err)
		}
		written = append(written, out)
	}
	m.logger.Info("imported usermod entries", "path", m.overlay, "count", len(written))
	return written, nil
}
