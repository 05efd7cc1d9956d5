// Package customcsv reads user modification definitions from a CSV file
// (format: name,mass,composition[,id]) for bulk import into usermod.xml.
package customcsv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// Read parses every definition in r. The first line is a header.
func Read(r io.Reader) ([]core.OverlayDefinition, error) {
	scanner := bufio.NewScanner(r)

	// Skip header line
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		return nil, nil
	}

	var defs []core.OverlayDefinition
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return nil, fmt.Errorf("line %d: expected at least 3 fields (name,mass,composition), got %d", lineNum, len(parts))
		}

		name := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])
		compStr := strings.TrimSpace(parts[2])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		comp, err := core.ParseComposition(compStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		def := core.OverlayDefinition{
			Name:        name,
			Mass:        mass,
			Composition: comp,
		}
		if len(parts) >= 4 {
			def.ID = strings.TrimSpace(parts[3])
		}

		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		defs = append(defs, def)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	return defs, nil
}
