package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldRule describes how one value is sourced and routed. The key of a rule
// inside a Config is expected to match a tag embedded in a board column
// description. Unknown properties from the configuration file are preserved
// verbatim in Extra.
type FieldRule struct {
	RemoteKey string                 `json:"remote_key,omitempty" yaml:"remote_key,omitempty"`
	InMonday  *bool                  `json:"in_monday,omitempty" yaml:"in_monday,omitempty"`
	InRemote  *bool                  `json:"in_remote,omitempty" yaml:"in_remote,omitempty"`
	Value     interface{}            `json:"value,omitempty" yaml:"value,omitempty"`
	Translate map[string]interface{} `json:"translate,omitempty" yaml:"translate,omitempty"`
	Extra     map[string]interface{} `json:"-" yaml:"-"`
}

// Config maps configuration keys (semantically tags) to field rules.
type Config map[string]*FieldRule

// knownRuleKeys are the property names consumed by the rule itself; anything
// else lands in Extra.
var knownRuleKeys = map[string]bool{
	"remote_key": true,
	"in_monday":  true,
	"in_remote":  true,
	"value":      true,
	"translate":  true,
}

// MondayEnabled reports whether the rule should be written to Monday.
// Defaults to true when unset.
func (r *FieldRule) MondayEnabled() bool {
	return r.InMonday == nil || *r.InMonday
}

// RemoteEnabled reports whether the rule's value should be resolved from the
// external data object. Defaults to true when unset.
func (r *FieldRule) RemoteEnabled() bool {
	return r.InRemote == nil || *r.InRemote
}

// Clone returns a copy of the rule safe to mutate during population. The
// Value itself is shared; population replaces it rather than mutating it.
func (r *FieldRule) Clone() *FieldRule {
	clone := &FieldRule{
		RemoteKey: r.RemoteKey,
		Value:     r.Value,
	}
	if r.InMonday != nil {
		v := *r.InMonday
		clone.InMonday = &v
	}
	if r.InRemote != nil {
		v := *r.InRemote
		clone.InRemote = &v
	}
	if r.Translate != nil {
		clone.Translate = make(map[string]interface{}, len(r.Translate))
		for k, v := range r.Translate {
			clone.Translate[k] = v
		}
	}
	if r.Extra != nil {
		clone.Extra = make(map[string]interface{}, len(r.Extra))
		for k, v := range r.Extra {
			clone.Extra[k] = v
		}
	}
	return clone
}

// UnmarshalJSON fills the fixed fields and collects unrecognized properties
// into Extra.
func (r *FieldRule) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["remote_key"]; ok {
		if err := json.Unmarshal(v, &r.RemoteKey); err != nil {
			return fmt.Errorf("invalid remote_key: %w", err)
		}
	}
	if v, ok := raw["in_monday"]; ok {
		if err := json.Unmarshal(v, &r.InMonday); err != nil {
			return fmt.Errorf("invalid in_monday: %w", err)
		}
	}
	if v, ok := raw["in_remote"]; ok {
		if err := json.Unmarshal(v, &r.InRemote); err != nil {
			return fmt.Errorf("invalid in_remote: %w", err)
		}
	}
	if v, ok := raw["value"]; ok {
		if err := json.Unmarshal(v, &r.Value); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
	}
	if v, ok := raw["translate"]; ok {
		if err := json.Unmarshal(v, &r.Translate); err != nil {
			return fmt.Errorf("invalid translate: %w", err)
		}
	}

	for key, v := range raw {
		if knownRuleKeys[key] {
			continue
		}
		var value interface{}
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("invalid property %s: %w", key, err)
		}
		if r.Extra == nil {
			r.Extra = make(map[string]interface{})
		}
		r.Extra[key] = value
	}

	return nil
}

// MarshalJSON writes the fixed fields and the preserved extra properties back
// into one flat object.
func (r *FieldRule) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 5+len(r.Extra))
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.RemoteKey != "" {
		out["remote_key"] = r.RemoteKey
	}
	if r.InMonday != nil {
		out["in_monday"] = *r.InMonday
	}
	if r.InRemote != nil {
		out["in_remote"] = *r.InRemote
	}
	if r.Value != nil {
		out["value"] = r.Value
	}
	if r.Translate != nil {
		out["translate"] = r.Translate
	}
	return json.Marshal(out)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML configuration files.
func (r *FieldRule) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case "remote_key":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid remote_key: expected string, got %T", value)
			}
			r.RemoteKey = s
		case "in_monday":
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid in_monday: expected bool, got %T", value)
			}
			r.InMonday = &b
		case "in_remote":
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid in_remote: expected bool, got %T", value)
			}
			r.InRemote = &b
		case "value":
			r.Value = value
		case "translate":
			m, ok := value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("invalid translate: expected mapping, got %T", value)
			}
			r.Translate = m
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]interface{})
			}
			r.Extra[key] = value
		}
	}

	return nil
}

// Populate resolves every rule's value against the external data object and
// returns a new config; the input is left untouched. A rule with remote
// resolution enabled and a remote key set gets its value overwritten by the
// dotted-path lookup; when the path breaks off, the pre-set value survives.
// Translate tables rewrite the resolved value afterwards. Entries with an
// empty rule body (decoded as nil) carry no routing and are dropped.
func Populate(config Config, data map[string]interface{}) Config {
	populated := make(Config, len(config))
	for key, rule := range config {
		if rule == nil {
			continue
		}
		clone := rule.Clone()

		if clone.RemoteEnabled() && clone.RemoteKey != "" {
			if value, ok := ResolvePath(data, clone.RemoteKey); ok {
				clone.Value = value
			}
		}

		if len(clone.Translate) > 0 {
			lookup := fmt.Sprintf("%v", clone.Value)
			if replacement, ok := clone.Translate[lookup]; ok {
				clone.Value = replacement
			}
		}

		populated[key] = clone
	}
	return populated
}

// ResolvePath walks a dot-separated path through nested string-keyed maps.
// Resolution fails only when a segment is missing or an intermediate value
// cannot be traversed; a present-but-null leaf resolves to nil so it can
// overwrite a pre-set value (and sanitize away to an omitted column).
func ResolvePath(data map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = data

	for _, segment := range segments {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = value
	}

	return current, true
}
