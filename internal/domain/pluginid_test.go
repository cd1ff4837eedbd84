package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginID_Scheme(t *testing.T) {
	cases := []struct {
		id   PluginID
		want PluginIDScheme
	}{
		{"bundled://applications", PluginIDBundled},
		{"file:///home/user/plugin", PluginIDFile},
		{"https://github.com/acme/plugin.git", PluginIDGit},
		{"ssh://git@github.com/acme/plugin.git", PluginIDGit},
		{"git@github.com:acme/plugin.git", PluginIDGit},
	}
	for _, c := range cases {
		got, err := c.id.Scheme()
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestPluginID_Scheme_Invalid(t *testing.T) {
	_, err := PluginID("not-a-valid-id").Scheme()
	assert.Error(t, err)
}

func TestPluginID_GitURL_NormalizesScpLike(t *testing.T) {
	url, err := PluginID("git@github.com:acme/plugin.git").GitURL()
	require.NoError(t, err)
	assert.Equal(t, "ssh://git@github.com/acme/plugin.git", url)
}

func TestPluginID_GitURL_PassesThroughHTTPS(t *testing.T) {
	url, err := PluginID("https://github.com/acme/plugin.git").GitURL()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/plugin.git", url)
}

func TestPluginID_GitURL_RejectsNonGit(t *testing.T) {
	_, err := PluginID("bundled://applications").GitURL()
	assert.Error(t, err)
}
