package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileFormat is the encoding of a settings file.
type FileFormat string

// Supported settings file formats.
const (
	FileFormatYAML FileFormat = "yaml"
	FileFormatTOML FileFormat = "toml"
)

// FormatFromPath picks the file format from the path's extension.
func FormatFromPath(path string) (FileFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FileFormatYAML, true
	case ".toml":
		return FileFormatTOML, true
	}
	return "", false
}

// Loader loads settings from the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, decodes and validates the settings file at path.
func (l *Loader) Load(path string) (*Settings, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, NewUnsupportedFormatError(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings, err := Parse(data, format)
	if err != nil {
		if ue := GetUserError(err); ue != nil && ue.Code == ErrCodeConfigParse {
			ue.Context = lineContext(path, ue.Underlying)
		}
		return nil, err
	}
	return settings, nil
}

// Parse decodes and validates settings. Unknown keys are rejected.
// An empty document yields the defaults.
func Parse(data []byte, format FileFormat) (*Settings, error) {
	settings := &Settings{}

	switch format {
	case FileFormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
			return nil, NewConfigParseError("", "YAML", err)
		}
	case FileFormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(settings); err != nil {
			return nil, NewConfigParseError("", "TOML", tomlError(err))
		}
	default:
		return nil, NewUnsupportedFormatError(string(format))
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// tomlError adds the row reported by go-toml to the message.
func tomlError(err error) error {
	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, _ := decErr.Position()
		return fmt.Errorf("line %d: %w", row, err)
	}
	return err
}
