package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultExportName returns the export file name used when none is given.
func DefaultExportName(now time.Time) string {
	return "ue_location_" + now.Format("20060102_150405") + ".json"
}

// ExportFile writes payload to path and returns the path written. An empty
// path uses DefaultExportName. Files ending in .yaml or .yml are written as
// YAML, everything else as indented JSON.
func ExportFile(path string, payload any, now time.Time) (string, error) {
	if path == "" {
		path = DefaultExportName(now)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(payload)
	default:
		data, err = json.MarshalIndent(payload, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- exports are meant to be shared
		return "", fmt.Errorf("writing export %s: %w", path, err)
	}
	return path, nil
}
