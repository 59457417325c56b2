package n8n

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed taxonomy.toml
var defaultTaxonomy []byte

// Taxonomy maps full node types to category labels and trigger
// classifications. It is data, not code: extend it with a TOML file
// instead of editing the normaliser.
type Taxonomy struct {
	// VendorPrefixes are stripped from node types to build short names.
	VendorPrefixes []string `toml:"vendor_prefixes"`

	// AIMarkers force the AI category when found in a node type (case-insensitive).
	AIMarkers []string `toml:"ai_markers"`

	// Categories maps a full node type to its category label.
	Categories map[string]string `toml:"categories"`

	// Triggers maps a full node type to its trigger classification.
	Triggers map[string]string `toml:"triggers"`
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomy)
}

// ParseTaxonomy decodes a TOML taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding taxonomy: %w", err)
	}
	if t.Categories == nil {
		t.Categories = make(map[string]string)
	}
	if t.Triggers == nil {
		t.Triggers = make(map[string]string)
	}
	return &t, nil
}

// LoadTaxonomy returns the built-in taxonomy extended by the file at path.
// Entries in the file override built-in entries with the same node type;
// non-empty prefix and marker lists replace the built-in lists.
// An empty path returns the built-in taxonomy.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	base, err := DefaultTaxonomy()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file: %w", err)
	}
	overlay, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base.Merge(overlay)
	return base, nil
}

// Merge copies overlay's entries into t.
func (t *Taxonomy) Merge(overlay *Taxonomy) {
	if len(overlay.VendorPrefixes) > 0 {
		t.VendorPrefixes = overlay.VendorPrefixes
	}
	if len(overlay.AIMarkers) > 0 {
		t.AIMarkers = overlay.AIMarkers
	}
	maps.Copy(t.Categories, overlay.Categories)
	maps.Copy(t.Triggers, overlay.Triggers)
}

// ShortName strips the first matching vendor prefix from nodeType.
func (t *Taxonomy) ShortName(nodeType string) string {
	for _, prefix := range t.VendorPrefixes {
		if trimmed, ok := strings.CutPrefix(nodeType, prefix); ok {
			return trimmed
		}
	}
	return nodeType
}

// IsAI reports whether nodeType carries an AI vendor marker.
func (t *Taxonomy) IsAI(nodeType string) bool {
	lower := strings.ToLower(nodeType)
	for _, marker := range t.AIMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
