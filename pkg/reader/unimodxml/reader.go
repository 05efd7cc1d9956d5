// Package unimodxml provides a streaming reader for unimod.xml and usermod.xml files
package unimodxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
)

// Reader provides streaming access to the modifications of a unimod-style file
type Reader struct {
	decoder  *xml.Decoder
	source   string
	building *core.Modification
	spec     *core.Specificity
	inDelta  bool
	inLoss   bool
	current  *core.Modification
	err      error
}

// NewReader creates a new reader. source is recorded on every returned record.
func NewReader(r io.Reader, source string) *Reader {
	return &Reader{
		decoder: xml.NewDecoder(r),
		source:  source,
	}
}

// Next advances to the next modification. Returns false when no more records or error.
func (r *Reader) Next() bool {
	r.current = nil

	mod, err := r.readModification()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = mod
	return true
}

// Modification returns the current modification
func (r *Reader) Modification() *core.Modification {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readModification consumes tokens until a closing mod element
func (r *Reader) readModification() (*core.Modification, error) {
	for {
		tok, err := r.decoder.Token()
		if err == io.EOF {
			if r.building != nil {
				return nil, r.errorf("unexpected end of file inside mod '%s'", r.building.Name)
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.source, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := r.start(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if mod := r.end(t); mod != nil {
				return mod, nil
			}
		}
	}
}

func (r *Reader) start(el xml.StartElement) error {
	switch el.Name.Local {
	case "mod":
		title, ok := attr(el, "title")
		if !ok {
			return r.errorf("mod element without title")
		}
		id, _ := attr(el, "record_id")
		r.building = &core.Modification{
			ID:          id,
			Name:        title,
			Composition: core.Composition{},
			Source:      r.source,
		}

	case "delta":
		if r.building == nil {
			return nil
		}
		r.inDelta = true
		if raw, ok := attr(el, "mono_mass"); ok {
			mass, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return r.errorf("invalid mono_mass '%s' for mod '%s': %w", raw, r.building.Name, err)
			}
			r.building.MonoMass = mass
		}

	case "element":
		// Only the delta composition counts; amino acid and neutral loss
		// blocks carry their own element lists.
		if r.building == nil || !r.inDelta || r.inLoss {
			return nil
		}
		symbol, _ := attr(el, "symbol")
		raw, _ := attr(el, "number")
		number, err := strconv.Atoi(raw)
		if err != nil {
			return r.errorf("invalid element number '%s' for %s in mod '%s': %w", raw, symbol, r.building.Name, err)
		}
		if number != 0 {
			r.building.Composition[symbol] = number
		}

	case "specificity":
		if r.building == nil {
			return nil
		}
		site, _ := attr(el, "site")
		position, _ := attr(el, "position")
		classification, _ := attr(el, "classification")
		r.spec = &core.Specificity{
			Site:           site,
			Position:       position,
			Classification: classification,
		}

	case "NeutralLoss":
		r.inLoss = true
		if r.spec == nil {
			return nil
		}
		raw, _ := attr(el, "mono_mass")
		mass, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return r.errorf("invalid neutral loss mass '%s' in mod '%s': %w", raw, r.building.Name, err)
		}
		r.spec.NeutralLosses = append(r.spec.NeutralLosses, core.NeutralLossDef{Raw: raw, MonoMass: mass})
	}
	return nil
}

func (r *Reader) end(el xml.EndElement) *core.Modification {
	switch el.Name.Local {
	case "delta":
		r.inDelta = false
	case "NeutralLoss":
		r.inLoss = false
	case "specificity":
		if r.spec != nil && r.building != nil && r.spec.Classification != core.ClassificationArtefact {
			r.building.Specificities = append(r.building.Specificities, *r.spec)
		}
		r.spec = nil
	case "mod":
		mod := r.building
		r.building = nil
		r.spec = nil
		r.inDelta = false
		r.inLoss = false
		return mod
	}
	return nil
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	line, _ := r.decoder.InputPos()
	return fmt.Errorf("%s: line %d: %w", r.source, line, fmt.Errorf(format, args...))
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// ReadAll reads every modification from r in document order
func ReadAll(r io.Reader, source string) ([]core.Modification, error) {
	reader := NewReader(r, source)
	var mods []core.Modification
	for reader.Next() {
		mods = append(mods, *reader.Modification())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return mods, nil
}

// ReadFile reads every modification from the file at path
func ReadFile(path string) ([]core.Modification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mods file: %w", err)
	}
	defer f.Close()

	return ReadAll(f, path)
}
