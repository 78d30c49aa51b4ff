// Package badgesource loads badge classes exported from an issuing
// platform. A file holds either one badge class or a list of them, as JSON
// or YAML; a directory is read file by file in name order.
package badgesource

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/credentialengine/obpublisher/pkg/badges"
	"github.com/credentialengine/obpublisher/pkg/errors"
	"github.com/credentialengine/obpublisher/pkg/logging"
)

// Format is the encoding of a badge file.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, true
	case ".yaml", ".yml":
		return YAML, true
	}
	return "", false
}

// Load reads badge classes from a file or a directory. Files in a
// directory with an unknown extension are skipped.
func Load(path string) ([]badges.BadgeClass, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	if !info.IsDir() {
		return LoadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var out []badges.BadgeClass
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		file := filepath.Join(path, e.Name())
		if _, ok := FormatFor(file); !ok {
			logging.Debug().Str("file", file).Msg("Skipping non-badge file")
			continue
		}
		list, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	return out, nil
}

// LoadFile reads badge classes from one file.
func LoadFile(path string) ([]badges.BadgeClass, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, errors.NewValidationError("path", path, "badge files must be .json, .yaml or .yml")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	list, err := Decode(f, format)
	if err != nil {
		var parseErr *errors.ParseError
		if errors.As(err, &parseErr) {
			parseErr.File = path
		}
		return nil, err
	}
	return list, nil
}

// Decode reads one badge class or a list of them from r.
func Decode(r io.Reader, format Format) ([]badges.BadgeClass, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", "", err)
	}

	var list []badges.BadgeClass
	switch format {
	case JSON:
		list, err = decodeJSON(data)
	case YAML:
		list, err = decodeYAML(data)
	default:
		return nil, errors.NewValidationError("format", format, "unsupported badge format")
	}
	if err != nil {
		return nil, err
	}

	// Entries without an id cannot become credentials.
	return slices.DeleteFunc(list, func(b badges.BadgeClass) bool { return b.ID == "" }), nil
}

func decodeJSON(data []byte) ([]badges.BadgeClass, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var list []badges.BadgeClass
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return list, nil
	}

	var one badges.BadgeClass
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return []badges.BadgeClass{one}, nil
}

func decodeYAML(data []byte) ([]badges.BadgeClass, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var shape any
	if err := yaml.Unmarshal(data, &shape); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	if _, ok := shape.([]any); ok {
		var list []badges.BadgeClass
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return list, nil
	}

	var one badges.BadgeClass
	if err := yaml.Unmarshal(data, &one); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}
	return []badges.BadgeClass{one}, nil
}
