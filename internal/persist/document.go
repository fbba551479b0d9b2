package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dailyfocus/dailyfocus/internal/schema"
)

// ErrInvalidDocument is returned by Import for anything that is not a
// whole-state document.
var ErrInvalidDocument = errors.New("invalid backup document")

// Format is a backup file encoding. JSON is canonical; YAML and TOML carry
// the same tree.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat validates a format name. "" means JSON and "yml" is accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml or toml)", s)
	}
}

// FormatOf guesses the format from a file name, defaulting to JSON.
func FormatOf(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == "" {
		return string(FormatJSON)
	}
	return string(f)
}

// BackupFilename returns dailyfocus-backup-YYYYMMDD-HHMMSS.<ext> for now in
// now's location.
func BackupFilename(now time.Time, f Format) string {
	return fmt.Sprintf("%s-backup-%s.%s", schema.AppName, now.Format("20060102-150405"), f.Ext())
}

// Export builds a document from state stamped with exportDate = now and
// encodes it.
func Export(state *State, now time.Time, f Format) (data []byte, filename string, err error) {
	doc := state.Document()
	exported := now
	doc.ExportDate = &exported
	data, err = Encode(doc, f)
	if err != nil {
		return nil, "", err
	}
	return data, BackupFilename(now, f), nil
}

// Encode writes doc in format f. JSON output is indented.
func Encode(doc *schema.Document, f Format) ([]byte, error) {
	canonical, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	switch f {
	case "", FormatJSON:
		return canonical, nil
	}

	var tree map[string]any
	if err := json.Unmarshal(canonical, &tree); err != nil {
		return nil, fmt.Errorf("failed to transcode document: %w", err)
	}

	switch f {
	case FormatYAML:
		out, err := yaml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return out, nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(dropNulls(tree)); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Import decodes and validates a backup. Missing optional collections are
// filled with defaults. Nothing is applied here; the caller replaces its
// state with the result.
func Import(raw []byte, f Format) (*schema.Document, error) {
	canonical := raw
	switch f {
	case "", FormatJSON:
	case FormatYAML:
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		var err error
		if canonical, err = json.Marshal(tree); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatTOML:
		var tree map[string]any
		if _, err := toml.Decode(string(raw), &tree); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		var err error
		if canonical, err = json.Marshal(tree); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}

	return Decode(canonical)
}

// Decode parses and validates a canonical JSON document.
func Decode(raw []byte) (*schema.Document, error) {
	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc.FillDefaults()
	return &doc, nil
}

// dropNulls removes JSON nulls, which TOML cannot represent.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = dropNulls(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val != nil {
				out = append(out, dropNulls(val))
			}
		}
		return out
	default:
		return v
	}
}
