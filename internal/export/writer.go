package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoOutputPath is returned when WriteFile is called without a path.
var ErrNoOutputPath = errors.New("output path is required")

// Marshal renders the fetched details as a pretty-printed JSON array, in
// the order they appear in items. An empty run encodes as "[]", never null.
func Marshal(items []Item) ([]byte, error) {
	details := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		details = append(details, item.Detail)
	}

	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the export to path. The output is exactly the array of
// detail objects: no wrapping metadata, no encryption.
func WriteFile(path string, items []Item) error {
	if path == "" {
		return ErrNoOutputPath
	}

	data, err := Marshal(items)
	if err != nil {
		return err
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}
