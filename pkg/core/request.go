package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// NeutralLossSentinel asks for the neutral loss defined in the dataset.
const NeutralLossSentinel = "unimod"

// ModType is the fixed/variable classification of a request.
type ModType string

const (
	ModTypeFixed    ModType = "fixed"
	ModTypeVariable ModType = "variable"
)

// ParseModType accepts "fixed"/"fix" and "variable"/"opt".
func ParseModType(s string) (ModType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fix":
		return ModTypeFixed, nil
	case "variable", "opt":
		return ModTypeVariable, nil
	default:
		return "", fmt.Errorf("unknown modification type '%s', must be fixed or variable", s)
	}
}

// ModID is a record identifier that remembers whether the caller wrote it
// as a number or as a string. Lookups always use the string form.
type ModID struct {
	Value   string
	Numeric bool
}

// IntID builds a numeric identifier.
func IntID(id int) ModID {
	return ModID{Value: strconv.Itoa(id), Numeric: true}
}

// StringID builds a string identifier.
func StringID(id string) ModID {
	return ModID{Value: id}
}

// String returns the normalized lookup key.
func (id ModID) String() string {
	return id.Value
}

// normalizeNumericID turns "35.0" into "35" so numeric ids hit the index.
func normalizeNumericID(raw string) (string, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("invalid numeric id '%s': %w", raw, err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return raw, nil
}

func (id ModID) MarshalJSON() ([]byte, error) {
	if id.Numeric {
		return []byte(id.Value), nil
	}
	return json.Marshal(id.Value)
}

func (id *ModID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	value, err := normalizeNumericID(string(data))
	if err != nil {
		return err
	}
	*id = ModID{Value: value, Numeric: true}
	return nil
}

func (id ModID) MarshalYAML() (interface{}, error) {
	if id.Numeric {
		if n, err := strconv.Atoi(id.Value); err == nil {
			return n, nil
		}
	}
	return id.Value, nil
}

func (id *ModID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", value.Line)
	}
	switch value.ShortTag() {
	case "!!int", "!!float":
		v, err := normalizeNumericID(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*id = ModID{Value: v, Numeric: true}
	default:
		*id = StringID(value.Value)
	}
	return nil
}

// NeutralLossHint is the optional neutral_loss entry of a request: either a
// numeric literal or the "unimod" sentinel. Absence is a nil *NeutralLossHint.
type NeutralLossHint struct {
	Sentinel bool
	Literal  float64
}

// LiteralHint builds a numeric neutral-loss hint.
func LiteralHint(v float64) *NeutralLossHint {
	return &NeutralLossHint{Literal: v}
}

// SentinelHint builds the "use dataset value" hint.
func SentinelHint() *NeutralLossHint {
	return &NeutralLossHint{Sentinel: true}
}

func parseHintString(s string) (NeutralLossHint, error) {
	if s == NeutralLossSentinel {
		return NeutralLossHint{Sentinel: true}, nil
	}
	return NeutralLossHint{}, fmt.Errorf("invalid neutral_loss '%s', expected a number or '%s'", s, NeutralLossSentinel)
}

func (h NeutralLossHint) MarshalJSON() ([]byte, error) {
	if h.Sentinel {
		return json.Marshal(NeutralLossSentinel)
	}
	return json.Marshal(h.Literal)
}

func (h *NeutralLossHint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		hint, err := parseHintString(s)
		if err != nil {
			return err
		}
		*h = hint
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid neutral_loss: %w", err)
	}
	*h = NeutralLossHint{Literal: f}
	return nil
}

func (h NeutralLossHint) MarshalYAML() (interface{}, error) {
	if h.Sentinel {
		return NeutralLossSentinel, nil
	}
	return h.Literal, nil
}

func (h *NeutralLossHint) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: neutral_loss must be a scalar", value.Line)
	}
	switch value.ShortTag() {
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid neutral_loss: %w", value.Line, err)
		}
		*h = NeutralLossHint{Literal: f}
	default:
		hint, err := parseHintString(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*h = hint
	}
	return nil
}

// Request is one modification requested by the caller. Exactly one of Name
// or ID identifies the record to resolve.
type Request struct {
	AA          string           `json:"aa" yaml:"aa"`
	Type        string           `json:"type" yaml:"type"`
	Position    string           `json:"position" yaml:"position"`
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	ID          *ModID           `json:"id,omitempty" yaml:"id,omitempty"`
	NeutralLoss *NeutralLossHint `json:"neutral_loss,omitempty" yaml:"neutral_loss,omitempty"`
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	out := r
	if r.ID != nil {
		id := *r.ID
		out.ID = &id
	}
	if r.NeutralLoss != nil {
		nl := *r.NeutralLoss
		out.NeutralLoss = &nl
	}
	return out
}

// RequestError reports a malformed request at position Index of the input list.
type RequestError struct {
	Index   int
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request %d: %s: %s", e.Index, e.Field, e.Message)
}

// Validate checks the request at position index of the caller's list.
func (r Request) Validate(index int) error {
	if r.Name == "" && (r.ID == nil || r.ID.Value == "") {
		return &RequestError{Index: index, Field: "name/id", Message: "one of name or id is required"}
	}
	if r.Name != "" && r.ID != nil {
		return &RequestError{Index: index, Field: "name/id", Message: "name and id are mutually exclusive"}
	}
	if _, err := ParseModType(r.Type); err != nil {
		return &RequestError{Index: index, Field: "type", Message: err.Error()}
	}
	if r.AA == "" {
		return &RequestError{Index: index, Field: "aa", Message: "site is required, use '*' for any"}
	}
	return nil
}

// NeutralLoss is the resolved neutral loss of a mapped modification. It
// encodes as null, as an empty list, or as the dataset mass string.
type NeutralLoss struct {
	set   bool
	value string
}

// NoNeutralLoss is used when the request carried no hint.
func NoNeutralLoss() NeutralLoss { return NeutralLoss{} }

// EmptyNeutralLoss is used when no dataset loss applies.
func EmptyNeutralLoss() NeutralLoss { return NeutralLoss{set: true} }

// NeutralLossValue wraps a dataset neutral-loss mass.
func NeutralLossValue(raw string) NeutralLoss { return NeutralLoss{set: true, value: raw} }

// IsNull reports whether no neutral loss was requested.
func (n NeutralLoss) IsNull() bool { return !n.set }

// Value returns the dataset mass string, if any.
func (n NeutralLoss) Value() (string, bool) {
	return n.value, n.set && n.value != ""
}

func (n NeutralLoss) MarshalJSON() ([]byte, error) {
	switch {
	case !n.set:
		return []byte("null"), nil
	case n.value == "":
		return []byte("[]"), nil
	default:
		return json.Marshal(n.value)
	}
}

func (n *NeutralLoss) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = NoNeutralLoss()
	case len(data) > 0 && data[0] == '[':
		*n = EmptyNeutralLoss()
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid neutral_loss: %w", err)
		}
		*n = NeutralLossValue(s)
	}
	return nil
}

// MappedModification is a request resolved against the reference data.
type MappedModification struct {
	AA           string      `json:"aa"`
	Position     string      `json:"position"`
	Name         string      `json:"name"`
	Mass         float64     `json:"mass"`
	Composition  Composition `json:"composition"`
	ID           ModID       `json:"id"`
	NeutralLoss  NeutralLoss `json:"neutral_loss"`
	RequestIndex int         `json:"_id"`
	Org          Request     `json:"org"`
	Unimod       bool        `json:"unimod"`
}

// MappedMods partitions resolved requests by classification.
type MappedMods struct {
	Fixed    []MappedModification `json:"fixed"`
	Variable []MappedModification `json:"variable"`
}
