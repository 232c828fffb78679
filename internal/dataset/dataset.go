package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/convsearch/retrieval-eval/internal/models"
)

// Load reads a dialogue dataset from a JSON file.
func Load(path string) (*models.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Save writes the dataset as indented UTF-8 JSON, creating the output
// directory if needed. Non-ASCII text is written verbatim rather than
// escaped.
func Save(path string, ds *models.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}
	return f.Close()
}

// DerivedPath builds the output path for a transformed dataset: the input
// file's stem plus a suffix, in outputDir when given, otherwise next to the
// input file.
func DerivedPath(inputPath, outputDir, suffix string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix+".json")
}
