package mapper

import (
	"strings"

	"shopsync/internal/destination"
	"shopsync/internal/order"
)

// Mapper adapts a fixed-shape order onto whatever field schema a
// destination currently has, using type- and name-driven heuristics.
type Mapper struct {
	rules []Rule
	cfg   Config
}

func New(cfg Config) *Mapper {
	return &Mapper{
		rules: DefaultRules(),
		cfg:   cfg,
	}
}

// Map produces the destination payload for one order against one schema.
// Every schema property is considered independently: the title property
// receives the order's display name, every other property is run through
// the rule table, and properties matching no rule are left unset. The
// result is identical for any iteration order of schema properties.
func (m *Mapper) Map(o *order.Order, schema *destination.Schema) destination.Properties {
	props := make(destination.Properties)
	if schema == nil {
		return props
	}

	for name, propType := range schema.Properties {
		if propType == destination.TypeTitle {
			// Destinations enforce a single title property; if a schema
			// somehow has none, the remaining properties still map.
			props[name] = destination.Title(o.DisplayName())
			continue
		}

		if value, ok := m.match(o, name, propType); ok {
			props[name] = value
		}
	}

	return props
}

func (m *Mapper) match(o *order.Order, name string, propType destination.PropertyType) (interface{}, bool) {
	lowered := strings.ToLower(name)

	for _, rule := range m.rules {
		if rule.Type != propType {
			continue
		}
		if !matchesName(lowered, rule.Synonyms) {
			continue
		}
		if value, ok := rule.Extract(o, m.cfg); ok {
			return value, true
		}
	}

	return nil, false
}

func matchesName(loweredName string, synonyms []string) bool {
	if len(synonyms) == 0 {
		return true
	}
	for _, s := range synonyms {
		if strings.Contains(loweredName, s) {
			return true
		}
	}
	return false
}
