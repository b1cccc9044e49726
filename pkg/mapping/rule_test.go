package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFieldRuleUnmarshalJSONPreservesExtraProperties(t *testing.T) {
	raw := `{
		"remote_key": "Customer.Id",
		"in_monday": true,
		"in_remote": false,
		"value": "preset",
		"translate": {"a": "b"},
		"note": "keep me",
		"weight": 3
	}`

	var rule FieldRule
	require.NoError(t, json.Unmarshal([]byte(raw), &rule))

	assert.Equal(t, "Customer.Id", rule.RemoteKey)
	require.NotNil(t, rule.InMonday)
	assert.True(t, *rule.InMonday)
	require.NotNil(t, rule.InRemote)
	assert.False(t, *rule.InRemote)
	assert.Equal(t, "preset", rule.Value)
	assert.Equal(t, map[string]interface{}{"a": "b"}, rule.Translate)
	assert.Equal(t, map[string]interface{}{"note": "keep me", "weight": float64(3)}, rule.Extra)
}

func TestFieldRuleMarshalJSONRoundTripsExtras(t *testing.T) {
	rule := FieldRule{
		RemoteKey: "Customer.Id",
		Value:     "x",
		Extra:     map[string]interface{}{"note": "keep me"},
	}

	data, err := json.Marshal(&rule)
	require.NoError(t, err)

	var decoded FieldRule
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Customer.Id", decoded.RemoteKey)
	assert.Equal(t, "x", decoded.Value)
	assert.Equal(t, map[string]interface{}{"note": "keep me"}, decoded.Extra)
}

func TestFieldRuleUnmarshalYAML(t *testing.T) {
	raw := `
remote_key: Customer.Id
in_monday: false
custom: extra
`

	var rule FieldRule
	require.NoError(t, yaml.Unmarshal([]byte(raw), &rule))

	assert.Equal(t, "Customer.Id", rule.RemoteKey)
	require.NotNil(t, rule.InMonday)
	assert.False(t, *rule.InMonday)
	assert.Nil(t, rule.InRemote)
	assert.Equal(t, map[string]interface{}{"custom": "extra"}, rule.Extra)
}

func TestPopulateDropsEmptyRuleBodies(t *testing.T) {
	// A bare "client_id:" mapping entry decodes into a nil rule.
	var config Config
	require.NoError(t, yaml.Unmarshal([]byte("client_id:\nname:\n  remote_key: Customer.Name\n"), &config))
	require.Contains(t, config, "client_id")
	assert.Nil(t, config["client_id"])

	var populated Config
	assert.NotPanics(t, func() {
		populated = Populate(config, map[string]interface{}{
			"Customer": map[string]interface{}{"Name": "Acme"},
		})
	})

	assert.NotContains(t, populated, "client_id")
	require.Contains(t, populated, "name")
	assert.Equal(t, "Acme", populated["name"].Value)
}

func TestPopulateDropsEmptyRuleBodiesJSON(t *testing.T) {
	var config Config
	require.NoError(t, json.Unmarshal([]byte(`{"client_id": null}`), &config))

	var populated Config
	assert.NotPanics(t, func() {
		populated = Populate(config, map[string]interface{}{})
	})
	assert.Empty(t, populated)
}

func TestFieldRuleDefaults(t *testing.T) {
	rule := &FieldRule{}
	assert.True(t, rule.MondayEnabled())
	assert.True(t, rule.RemoteEnabled())
}

func TestFieldRuleCloneIsIndependent(t *testing.T) {
	enabled := true
	rule := &FieldRule{
		RemoteKey: "a.b",
		InMonday:  &enabled,
		Translate: map[string]interface{}{"x": "y"},
		Extra:     map[string]interface{}{"k": "v"},
	}

	clone := rule.Clone()
	clone.RemoteKey = "changed"
	*clone.InMonday = false
	clone.Translate["x"] = "z"
	clone.Extra["k"] = "w"

	assert.Equal(t, "a.b", rule.RemoteKey)
	assert.True(t, *rule.InMonday)
	assert.Equal(t, "y", rule.Translate["x"])
	assert.Equal(t, "v", rule.Extra["k"])
}
