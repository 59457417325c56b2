// Package n8n parses n8n workflow exports into catalogue metadata.
package n8n

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
)

const (
	// MinDocumentSize is the smallest plausible workflow document in bytes.
	MinDocumentSize = 20

	// maxDescribedNodes is how many node names a derived description lists.
	maxDescribedNodes = 10
)

var (
	nodesPath       = jp.MustParseString("$.nodes")
	namePath        = jp.MustParseString("$.name")
	descriptionPath = jp.MustParseString("$.description")
	typePath        = jp.MustParseString("$.type")
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser parses n8n workflow JSON.
type Normaliser struct {
	taxonomy *Taxonomy
}

// New creates a normaliser backed by taxonomy.
func New(taxonomy *Taxonomy) *Normaliser {
	return &Normaliser{taxonomy: taxonomy}
}

// NewDefault creates a normaliser backed by the built-in taxonomy.
func NewDefault() (*Normaliser, error) {
	t, err := DefaultTaxonomy()
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// Normalise validates raw and derives its catalogue metadata.
func (n *Normaliser) Normalise(_ context.Context, raw domain.RawWorkflow) (*domain.ParsedWorkflow, error) {
	if len(bytes.TrimSpace(raw.Content)) < MinDocumentSize {
		return nil, fmt.Errorf("%w: document shorter than %d bytes", domain.ErrInvalidWorkflow, MinDocumentSize)
	}

	parsed, err := oj.Parse(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", domain.ErrInvalidWorkflow, err)
	}

	// Some exports wrap the workflow in a single-element array.
	if list, ok := parsed.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: empty array", domain.ErrInvalidWorkflow)
		}
		parsed = list[0]
	}
	doc, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", domain.ErrInvalidWorkflow)
	}

	nodes, _ := nodesPath.First(doc).([]any)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: nodes list is missing or empty", domain.ErrInvalidWorkflow)
	}

	name := stringAt(namePath, doc)
	if name == "" {
		name = domain.DefaultWorkflowName
	}

	description := stringAt(descriptionPath, doc)
	if description == "" {
		description = describeNodes(nodes)
	}

	return &domain.ParsedWorkflow{
		Name:        name,
		Description: description,
		Nodes:       n.nodeTypes(nodes),
		Categories:  n.categories(nodes),
		NodeCount:   len(nodes),
		TriggerType: n.trigger(nodes),
		OriginURL:   raw.OriginURL,
		OriginGroup: raw.OriginGroup,
		RawContent:  string(raw.Content),
		Fingerprint: domain.Fingerprint(raw.Content),
	}, nil
}

// nodeTypes returns the sorted distinct short names of all typed nodes.
func (n *Normaliser) nodeTypes(nodes []any) []string {
	seen := make(map[string]struct{})
	for _, node := range nodes {
		if t := stringAt(typePath, node); t != "" {
			seen[n.taxonomy.ShortName(t)] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// categories maps node types through the taxonomy, forcing the AI category
// for marked types and falling back to the sentinel category.
func (n *Normaliser) categories(nodes []any) []string {
	seen := make(map[string]struct{})
	for _, node := range nodes {
		t := stringAt(typePath, node)
		if t == "" {
			continue
		}
		if cat, ok := n.taxonomy.Categories[t]; ok {
			seen[cat] = struct{}{}
		}
		if n.taxonomy.IsAI(t) {
			seen[domain.CategoryAI] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return []string{domain.CategoryOther}
	}
	return sortedKeys(seen)
}

// trigger classifies the workflow by its first known trigger node in document order.
func (n *Normaliser) trigger(nodes []any) string {
	for _, node := range nodes {
		if trigger, ok := n.taxonomy.Triggers[stringAt(typePath, node)]; ok {
			return trigger
		}
	}
	return domain.TriggerComplex
}

// describeNodes lists the first node display names, noting how many were left out.
func describeNodes(nodes []any) string {
	var names []string
	for _, node := range nodes {
		if name := stringAt(namePath, node); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}

	shown := names[:min(len(names), maxDescribedNodes)]
	description := "Nodes: " + strings.Join(shown, ", ")
	if extra := len(names) - len(shown); extra > 0 {
		description += fmt.Sprintf(" (+%d more)", extra)
	}
	return description
}

func stringAt(path jp.Expr, data any) string {
	s, _ := path.First(data).(string)
	return strings.TrimSpace(s)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
