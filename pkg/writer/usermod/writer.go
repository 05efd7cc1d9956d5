// Package usermod writes user defined modifications to a usermod.xml overlay
// in the same shape as unimod.xml.
package usermod

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"github.com/ChrisMcGann/UnimodMapper/pkg/core"
	"github.com/ChrisMcGann/UnimodMapper/pkg/reader/unimodxml"
)

// Namespace of the overlay document
const Namespace = "usermod"

const prefix = "umod:"

// Append merges def into the overlay file at path. Entries already in the file
// are kept in order and def is added last. Entries without an id get "u<N>",
// N being the number of entries in the merged file. The returned definition
// carries the id that was written.
//
// The file is rewritten atomically while holding an exclusive lock on
// path + ".lock".
func Append(path string, def core.OverlayDefinition) (core.OverlayDefinition, error) {
	if err := def.Validate(); err != nil {
		return def, err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return def, fmt.Errorf("failed to lock overlay: %w", err)
	}
	defer lock.Unlock()

	defs, err := readExisting(path)
	if err != nil {
		return def, err
	}
	defs = append(defs, def)

	for i := range defs {
		if defs[i].ID == "" {
			defs[i].ID = "u" + strconv.Itoa(len(defs))
		}
	}

	if err := writeFile(path, defs); err != nil {
		return def, err
	}
	return defs[len(defs)-1], nil
}

func readExisting(path string) ([]core.OverlayDefinition, error) {
	mods, err := unimodxml.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing overlay: %w", err)
	}

	defs := make([]core.OverlayDefinition, 0, len(mods)+1)
	for _, mod := range mods {
		defs = append(defs, core.OverlayFromModification(mod))
	}
	return defs, nil
}

// writeFile writes to a temporary file in the same directory and renames it
// over path.
func writeFile(path string, defs []core.OverlayDefinition) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Encode(w, defs); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write overlay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace overlay: %w", err)
	}
	return nil
}

// Encode writes defs as a pretty printed usermod document.
func Encode(w io.Writer, defs []core.OverlayDefinition) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := start("unimod", xml.Attr{Name: xml.Name{Local: "xmlns:umod"}, Value: Namespace})
	modifications := start("modifications")

	tokens := []xml.Token{root, modifications}
	for _, def := range defs {
		tokens = append(tokens, modTokens(def)...)
	}
	tokens = append(tokens, modifications.End(), root.End())

	for _, tok := range tokens {
		if err := enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("failed to encode overlay: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func modTokens(def core.OverlayDefinition) []xml.Token {
	mod := start("mod", attr("title", def.Name), attr("record_id", def.ID))
	tokens := []xml.Token{mod}

	for _, spec := range def.Specificities {
		el := start("specificity",
			attr("site", spec.Site),
			attr("position", spec.Position),
			attr("classification", spec.Classification),
		)
		tokens = append(tokens, el)
		for _, nl := range spec.NeutralLosses {
			loss := start("NeutralLoss", attr("mono_mass", nl.Raw))
			tokens = append(tokens, loss, loss.End())
		}
		tokens = append(tokens, el.End())
	}

	delta := start("delta",
		attr("mono_mass", strconv.FormatFloat(def.Mass, 'f', -1, 64)),
		attr("composition", def.Composition.Hill()),
	)
	tokens = append(tokens, delta)
	for _, symbol := range def.Composition.Symbols() {
		el := start("element", attr("symbol", symbol), attr("number", strconv.Itoa(def.Composition[symbol])))
		tokens = append(tokens, el, el.End())
	}
	tokens = append(tokens, delta.End(), mod.End())
	return tokens
}

func start(local string, attrs ...xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: prefix + local}, Attr: attrs}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}
