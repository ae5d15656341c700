package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat - расширение файла справочника не json/yaml.
var ErrUnknownFormat = errors.New("unknown dataset format")

//go:embed data/brands.json
var embedded []byte

// Embedded возвращает встроенный справочник.
func Embedded() (Dataset, error) {
	return Parse(embedded, "json")
}

// Load читает справочник из файла (.json, .yaml, .yml).
// Пустой path - встроенный справочник.
func Load(path string) (Dataset, error) {
	const op = "catalog.Load"

	if path == "" {
		ds, err := Embedded()
		if err != nil {
			return nil, fmt.Errorf("%s: embedded: %w", op, err)
		}
		return ds, nil
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "json" && format != "yaml" && format != "yml" {
		return nil, fmt.Errorf("%s: %q: %w", op, path, ErrUnknownFormat)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ds, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", op, path, err)
	}

	return ds, nil
}

// Parse декодирует справочник в формате json или yaml/yml.
func Parse(data []byte, format string) (Dataset, error) {
	var ds Dataset

	switch format {
	case "json":
		if err := json.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}

	if len(ds) == 0 {
		return nil, errors.New("dataset is empty")
	}

	return ds, nil
}
