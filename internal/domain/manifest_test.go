package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
name: acme-tasks
description: Track tasks from the launcher
entrypoints:
  - id: add-task
    name: Add Task
    type: command
  - id: browse
    name: Browse
    type: view
permissions:
  filesystem:
    read:
      - "{common:plugin-data}/*"
  clipboard:
    - read
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, "acme-tasks", m.Name)
	require.Len(t, m.Entrypoints, 2)
	assert.Equal(t, "add-task", m.Entrypoints[0].ID)
	assert.Equal(t, "command", m.Entrypoints[0].Type)

	perms := m.ToPermissions()
	assert.True(t, perms.HasClipboard(ClipboardRead))
	assert.False(t, perms.HasClipboard(ClipboardWrite))
	_, ok := perms.FilesystemRead["{common:plugin-data}/*"]
	assert.True(t, ok)
}

func TestParseManifest_MissingName(t *testing.T) {
	_, err := ParseManifest([]byte("description: no name here\n"))
	require.Error(t, err)
	var domainErr *Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, ErrorCodeConfigError, domainErr.Code)
}

func TestParseManifest_UnknownEntrypointType(t *testing.T) {
	_, err := ParseManifest([]byte(`
name: bad
entrypoints:
  - id: x
    type: not-a-real-type
`))
	require.Error(t, err)
}

func TestParseManifest_InvalidYAML(t *testing.T) {
	_, err := ParseManifest([]byte("not: [valid: yaml"))
	assert.Error(t, err)
}
