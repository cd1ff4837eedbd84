package rpcserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

func TestValidatePreferenceJSON(t *testing.T) {
	cases := []struct {
		name    string
		schema  domain.PreferenceSchema
		raw     string
		wantErr bool
	}{
		{"number valid", domain.PreferenceSchema{Kind: domain.PreferenceNumber}, `42.5`, false},
		{"number wrong type", domain.PreferenceSchema{Kind: domain.PreferenceNumber}, `"42.5"`, true},
		{"string valid", domain.PreferenceSchema{Kind: domain.PreferenceString}, `"hello"`, false},
		{"bool valid", domain.PreferenceSchema{Kind: domain.PreferenceBool}, `true`, false},
		{"bool wrong type", domain.PreferenceSchema{Kind: domain.PreferenceBool}, `"true"`, true},
		{
			"enum valid member",
			domain.PreferenceSchema{Kind: domain.PreferenceEnum, EnumOptions: []domain.EnumOption{{Label: "Light", Value: "light"}, {Label: "Dark", Value: "dark"}}},
			`"dark"`, false,
		},
		{
			"enum not a member",
			domain.PreferenceSchema{Kind: domain.PreferenceEnum, EnumOptions: []domain.EnumOption{{Label: "Light", Value: "light"}, {Label: "Dark", Value: "dark"}}},
			`"solarized"`, true,
		},
		{"list of strings valid", domain.PreferenceSchema{Kind: domain.PreferenceListOfStrings}, `["a","b"]`, false},
		{"list of strings wrong element type", domain.PreferenceSchema{Kind: domain.PreferenceListOfStrings}, `[1,2]`, true},
		{"list of numbers valid", domain.PreferenceSchema{Kind: domain.PreferenceListOfNumbers}, `[1,2,3]`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePreferenceJSON(tc.schema, json.RawMessage(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodePreferenceValue(t *testing.T) {
	v, err := decodePreferenceValue(domain.PreferenceSchema{Kind: domain.PreferenceNumber}, json.RawMessage(`3.5`))
	require.NoError(t, err)
	assert.Equal(t, domain.PreferenceNumber, v.Kind)
	assert.Equal(t, 3.5, v.Number)

	v, err = decodePreferenceValue(domain.PreferenceSchema{Kind: domain.PreferenceEnum}, json.RawMessage(`"dark"`))
	require.NoError(t, err)
	assert.Equal(t, domain.PreferenceEnum, v.Kind)
	assert.Equal(t, "dark", v.String)

	v, err = decodePreferenceValue(domain.PreferenceSchema{Kind: domain.PreferenceListOfStrings}, json.RawMessage(`["x","y"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, v.ListStrings)

	_, err = decodePreferenceValue(domain.PreferenceSchema{Kind: domain.PreferenceNumber}, json.RawMessage(`"not a number"`))
	assert.Error(t, err)
}
