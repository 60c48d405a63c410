package assistant

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Intent identifies a canned response category.
type Intent string

const (
	IntentGrades     Intent = "grades"
	IntentAttendance Intent = "attendance"
	IntentSchedule   Intent = "schedule"
	IntentCourses    Intent = "courses"
	IntentFees       Intent = "fees"
	IntentResults    Intent = "results"
	IntentDefault    Intent = "default"

	// IntentWelcome seeds every new conversation.
	IntentWelcome Intent = "welcome"
	// IntentUnavailable replaces a reply that could not be produced in time.
	IntentUnavailable Intent = "unavailable"
)

var (
	ErrUnknownIntent = errors.New("intent has no catalog entry")
	ErrEmptyEntry    = errors.New("catalog entry is empty")
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Responder produces the reply text for a classified query. Catalog is the
// static implementation; a live data source can stand in for it.
type Responder interface {
	Respond(ctx context.Context, intent Intent) (string, error)
}

// Catalog is the static store of reply text keyed by intent.
type Catalog struct {
	entries map[Intent]string
}

// DefaultCatalog parses the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// MustDefaultCatalog is DefaultCatalog for package-level wiring and tests.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog decodes a YAML mapping of intent -> text.
func ParseCatalog(data []byte) (*Catalog, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	entries := make(map[Intent]string, len(raw))
	for k, v := range raw {
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyEntry, k)
		}
		entries[Intent(k)] = v
	}
	return NewCatalog(entries), nil
}

// NewCatalog builds a catalog from an explicit mapping. The map is copied.
func NewCatalog(entries map[Intent]string) *Catalog {
	copied := make(map[Intent]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Catalog{entries: copied}
}

// Lookup returns the text for intent, or "" if the catalog has no entry.
// Classifier construction guarantees every classifiable intent is present.
func (c *Catalog) Lookup(intent Intent) string {
	return c.entries[intent]
}

// Has reports whether intent has an entry.
func (c *Catalog) Has(intent Intent) bool {
	_, ok := c.entries[intent]
	return ok
}

// Intents lists the catalog keys in lexical order.
func (c *Catalog) Intents() []Intent {
	keys := make([]Intent, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Respond implements Responder.
func (c *Catalog) Respond(ctx context.Context, intent Intent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, ok := c.entries[intent]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownIntent, intent)
	}
	return text, nil
}
