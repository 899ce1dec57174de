// Package content holds the broker flavor-text catalog. Keys form a closed
// set validated at load time, so a missing or malformed template is caught
// at startup instead of surfacing a generic fallback to the player.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/messages.json
var dataFS embed.FS

// Placeholder tokens a template may contain. Each present token is replaced
// exactly once by Format.
const (
	TokenLocation  = "[location name]"
	TokenCommodity = "[commodity name]"
	TokenDiscount  = "[discount amount %]"
	TokenDuration  = "[durationDays]"
	TokenPrice     = "[⌬ credit price]"
)

var allTokens = []string{TokenLocation, TokenCommodity, TokenDiscount, TokenDuration, TokenPrice}

// Template is one catalog entry: a short listing teaser and the full
// post-purchase details text.
type Template struct {
	Sample  string `json:"sample"`
	Details string `json:"details"`
}

// Catalog is the validated message catalog.
type Catalog struct {
	templates map[string]Template
	keys      []string // sorted
}

// Load parses and validates the embedded catalog. Validation failures are
// programmer errors and should abort startup.
func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile("data/messages.json")
	if err != nil {
		return nil, fmt.Errorf("read messages.json: %w", err)
	}
	var templates map[string]Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parse messages.json: %w", err)
	}
	return NewCatalog(templates)
}

// NewCatalog validates a template set and builds a catalog from it.
func NewCatalog(templates map[string]Template) (*Catalog, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("message catalog is empty")
	}
	c := &Catalog{templates: templates}
	for key, tpl := range templates {
		if key == "" {
			return nil, fmt.Errorf("catalog contains an empty key")
		}
		if err := validateTemplate(tpl); err != nil {
			return nil, fmt.Errorf("template %q: %w", key, err)
		}
		c.keys = append(c.keys, key)
	}
	sort.Strings(c.keys)
	return c, nil
}

func validateTemplate(tpl Template) error {
	if strings.TrimSpace(tpl.Sample) == "" {
		return fmt.Errorf("sample is empty")
	}
	if strings.TrimSpace(tpl.Details) == "" {
		return fmt.Errorf("details is empty")
	}
	// No token may repeat: Format substitutes each exactly once.
	for _, field := range []struct{ name, text string }{
		{"sample", tpl.Sample},
		{"details", tpl.Details},
	} {
		for _, tok := range allTokens {
			if strings.Count(field.text, tok) > 1 {
				return fmt.Errorf("%s repeats token %s", field.name, tok)
			}
		}
	}
	// Details must carry the full deal terms.
	for _, tok := range allTokens {
		if !strings.Contains(tpl.Details, tok) {
			return fmt.Errorf("details is missing token %s", tok)
		}
	}
	return nil
}

// Keys returns the closed, sorted set of catalog keys.
func (c *Catalog) Keys() []string {
	return c.keys
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Get returns the template for a key. Unknown keys are a programmer error
// given load-time validation, so the second return is false only if state
// was persisted against an older catalog.
func (c *Catalog) Get(key string) (Template, bool) {
	tpl, ok := c.templates[key]
	return tpl, ok
}

// Subst holds the values substituted into a template.
type Subst struct {
	LocationName    string
	CommodityName   string
	DiscountPercent float64 // fraction, e.g. 0.30
	DurationDays    int
	Price           int
}

// Format replaces each placeholder token present in the template exactly
// once and returns the rendered text.
func Format(template string, s Subst) string {
	out := template
	out = strings.Replace(out, TokenLocation, s.LocationName, 1)
	out = strings.Replace(out, TokenCommodity, s.CommodityName, 1)
	out = strings.Replace(out, TokenDiscount, fmt.Sprintf("%d%%", int(s.DiscountPercent*100+0.5)), 1)
	out = strings.Replace(out, TokenDuration, fmt.Sprintf("%d", s.DurationDays), 1)
	out = strings.Replace(out, TokenPrice, fmt.Sprintf("⌬%d", s.Price), 1)
	return out
}
