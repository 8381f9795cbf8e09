package domain

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Route is one value-to-page entry of a RoutingMap.
type Route struct {
	Value        string
	TargetPageID string
}

// RoutingMap maps a literal form value to a target page id, preserving the
// insertion order of its entries through JSON and YAML.
// A nil *RoutingMap is an empty map.
type RoutingMap struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewRoutingMap builds a map from routes in the given order.
func NewRoutingMap(routes ...Route) *RoutingMap {
	r := &RoutingMap{m: orderedmap.New[string, string]()}
	for _, route := range routes {
		r.m.Set(route.Value, route.TargetPageID)
	}
	return r
}

// Set inserts or replaces the target for value. Replacing keeps the
// original position.
func (r *RoutingMap) Set(value, targetPageID string) {
	if r.m == nil {
		r.m = orderedmap.New[string, string]()
	}
	r.m.Set(value, targetPageID)
}

// Len returns the number of entries.
func (r *RoutingMap) Len() int {
	if r == nil || r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Routes returns the entries in insertion order.
func (r *RoutingMap) Routes() []Route {
	if r.Len() == 0 {
		return nil
	}
	routes := make([]Route, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		routes = append(routes, Route{Value: pair.Key, TargetPageID: pair.Value})
	}
	return routes
}

// MarshalJSON implements json.Marshaler.
func (r *RoutingMap) MarshalJSON() ([]byte, error) {
	if r == nil || r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RoutingMap) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, string]()
	if err := m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid conditionalRouting: %w", err)
	}
	r.m = m
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r *RoutingMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, route := range r.Routes() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: route.Value},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: route.TargetPageID},
		)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Mapping order is preserved.
func (r *RoutingMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("invalid conditionalRouting at line %d: expected a mapping", node.Line)
	}
	m := orderedmap.New[string, string]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return fmt.Errorf("invalid conditionalRouting at line %d: entries must be scalars", key.Line)
		}
		m.Set(key.Value, val.Value)
	}
	r.m = m
	return nil
}
