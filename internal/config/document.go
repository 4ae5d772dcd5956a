// Package config reads and writes controller configuration documents
// and turns them into normalized control sets. It also keeps the local
// preset library.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mcascone/captain-config/internal/control"
	"github.com/mcascone/captain-config/internal/device"
)

// ErrNotObject reports a payload that is not a JSON object. This is the
// one unrecoverable parse failure: inside an object, every malformed
// field degrades to its default instead.
var ErrNotObject = errors.New("document is not a JSON object")

// Document is a configuration file as the editor or firmware wrote it,
// before normalization. Decoding is tolerant by construction; see the
// control.Opt* types.
type Document struct {
	Device        control.OptString `json:"device"`
	GlobalChannel control.OptInt    `json:"global_channel"`
	Buttons       ButtonList        `json:"buttons"`
	Encoder       *control.Raw      `json:"encoder"`
	Expression    ExpressionDoc     `json:"expression"`

	// Display holds the text-size and layout knobs the display collaborator
	// owns. It round-trips verbatim.
	Display json.RawMessage `json:"display,omitempty"`
}

// ButtonList reads a malformed buttons entry as empty rather than failing
// the document.
type ButtonList []control.Raw

func (l *ButtonList) UnmarshalJSON(b []byte) error {
	var list []control.Raw
	if err := json.Unmarshal(b, &list); err != nil {
		*l = nil
		return nil
	}
	*l = list
	return nil
}

// ExpressionDoc is the expression pedal pair as stored in documents.
type ExpressionDoc struct {
	Exp1 *control.Raw `json:"exp1"`
	Exp2 *control.Raw `json:"exp2"`
}

func (e *ExpressionDoc) UnmarshalJSON(b []byte) error {
	type alias ExpressionDoc
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		*e = ExpressionDoc{}
		return nil
	}
	*e = ExpressionDoc(a)
	return nil
}

func isObject(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// Parse decodes a configuration document. It fails only when the payload
// is not a JSON object at all; every problem inside the object degrades
// to a default and surfaces as a diagnostic during normalization instead.
func Parse(data []byte) (*Document, error) {
	if !isObject(data) {
		return nil, fmt.Errorf("parse config: %w", ErrNotObject)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &doc, nil
}

// ParseReader decodes a document from r.
func ParseReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// ParseFile decodes the document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Variant resolves the document's device field. Absent means STD10 (the
// field postdates the first firmware releases); an unrecognized name is a
// hard error, never a guess.
func (d *Document) Variant() (device.Variant, error) {
	return device.Parse(d.Device.Or(""))
}
