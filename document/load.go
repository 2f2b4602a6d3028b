/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a format of a document file.
type Format string

// Supported document file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath detects the document format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported document file extension %q, should be one of [.json, .yaml, .yml]", filepath.Ext(path))
}

// LoadFile reads a document from the file. The format is detected by file extension.
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("open document file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("load document from %s: %w", path, err)
	}
	return doc, nil
}

// Load decodes a single document from the reader.
func Load(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	return &doc, nil
}
