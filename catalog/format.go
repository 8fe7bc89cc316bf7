package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/go-ghcselect/version"
	"github.com/albertocavalcante/go-ghcselect/versionrange"
)

// Format is a catalog file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor guesses the format from a file name or URL path.
// Anything that does not end in .yaml or .yml is JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// SupportedSchema is the range of schema_version values this package reads.
const SupportedSchema = "^1"

var schemaConstraint = mustConstraint(SupportedSchema)

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ErrUnsupportedSchema is returned for a document whose schema_version is
// outside SupportedSchema.
var ErrUnsupportedSchema = errors.New("unsupported catalog schema")

// document is the on-disk form of a catalog:
//
//	schema_version: "1.0"
//	toolchains:
//	  - compiler: 9.2.8
//	    base: 4.16.4.0
//	    setup: ">=3.6"
type document struct {
	SchemaVersion string        `json:"schema_version" yaml:"schema_version"`
	Toolchains    []documentRow `json:"toolchains" yaml:"toolchains"`
}

type documentRow struct {
	Compiler string `json:"compiler" yaml:"compiler"`
	Base     string `json:"base" yaml:"base"`
	Setup    string `json:"setup,omitempty" yaml:"setup,omitempty"`
}

// Parse decodes a catalog document. Unknown fields are rejected. A missing
// setup range accepts any setup library version.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	}
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s catalog: empty document", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s catalog: %w", format, err)
	}
	return doc.catalog()
}

func (doc *document) catalog() (*Catalog, error) {
	if err := checkSchema(doc.SchemaVersion); err != nil {
		return nil, err
	}

	errs := &ValidationErrors{}
	entries := make([]Entry, 0, len(doc.Toolchains))
	for i, row := range doc.Toolchains {
		field := fmt.Sprintf("toolchains[%d]", i)
		e := Entry{Setup: versionrange.Any()}
		ok := true

		compiler, err := version.Parse(row.Compiler)
		if err != nil {
			errs.add(field+".compiler", "%v", err)
			ok = false
		}
		base, err := version.Parse(row.Base)
		if err != nil {
			errs.add(field+".base", "%v", err)
			ok = false
		}
		if row.Setup != "" {
			if e.Setup, err = versionrange.Parse(row.Setup); err != nil {
				errs.add(field+".setup", "%v", err)
				ok = false
			}
		}
		if ok {
			e.Compiler, e.Base = compiler, base
			entries = append(entries, e)
		}
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return New(entries...)
}

func checkSchema(raw string) error {
	if raw == "" {
		return &ValidationErrors{Errors: []*FieldError{{Field: "schema_version", Message: "required"}}}
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return &ValidationErrors{Errors: []*FieldError{{Field: "schema_version", Message: err.Error()}}}
	}
	if !schemaConstraint.Check(v) {
		return fmt.Errorf("%w: schema_version %s does not satisfy %s", ErrUnsupportedSchema, raw, SupportedSchema)
	}
	return nil
}

// Encode writes c in the given format with schema_version 1.0.
func Encode(w io.Writer, c *Catalog, format Format) error {
	doc := document{SchemaVersion: "1.0", Toolchains: make([]documentRow, 0, c.Len())}
	for _, e := range c.entries {
		row := documentRow{Compiler: e.Compiler.String(), Base: e.Base.String()}
		if !e.Setup.IsAny() {
			row.Setup = e.Setup.String()
		}
		doc.Toolchains = append(doc.Toolchains, row)
	}

	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// LoadFile reads a catalog from disk, picking the format from the extension.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
