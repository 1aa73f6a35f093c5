// Package manifest fetches and decodes the per-congress bulk manifests
// published by the govinfo bulk-data API.
package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Entry describes one downloadable law file listed in a bulk manifest.
type Entry struct {
	// Name uniquely identifies the file within its congress, e.g.
	// "PLAW-115publ1.xml".
	Name string `json:"name"`
	// Link is the download URL. Not every link points at an XML
	// resource; PDF and HTML renditions appear in the same listing.
	Link string `json:"link"`
}

// Manifest is the decoded bulk listing for one congress.
type Manifest struct {
	Files []Entry `json:"files"`
}

// Decode parses a raw manifest body.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// FileName returns the cache file name for a congress manifest.
func FileName(congress int) string {
	return fmt.Sprintf("plaw_%d.json", congress)
}

// CongressFromFileName recovers the congress number embedded in a
// manifest cache file name produced by FileName.
func CongressFromFileName(name string) (int, error) {
	rest, ok := strings.CutPrefix(name, "plaw_")
	if !ok {
		return 0, fmt.Errorf("manifest file name %q lacks plaw_ prefix", name)
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok {
		return 0, fmt.Errorf("manifest file name %q lacks .json suffix", name)
	}
	congress, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("manifest file name %q has no congress number: %w", name, err)
	}
	return congress, nil
}
