package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed form of a plugin bundle's manifest file, named
// gauntlet.yaml on disk and decoded with gopkg.in/yaml.v3 (see DESIGN.md).
type Manifest struct {
	Name         string                   `yaml:"name"`
	Description  string                   `yaml:"description"`
	Entrypoints  []ManifestEntrypoint     `yaml:"entrypoints"`
	Permissions  ManifestPermissions      `yaml:"permissions"`
	Preferences  map[string]ManifestPref  `yaml:"preferences"`
	SupportedOS  []string                 `yaml:"supported_os"`
}

type ManifestEntrypoint struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Path        string                  `yaml:"path"`
	Type        string                  `yaml:"type"`
	Icon        string                  `yaml:"icon,omitempty"`
	Actions     []ManifestAction        `yaml:"actions"`
	Preferences map[string]ManifestPref `yaml:"preferences"`
}

type ManifestAction struct {
	ID    string `yaml:"id,omitempty"`
	Label string `yaml:"label"`
}

type ManifestPref struct {
	Kind        string              `yaml:"kind"`
	Required    bool                `yaml:"required"`
	EnumOptions []ManifestEnumValue `yaml:"enum_options,omitempty"`
}

type ManifestEnumValue struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type ManifestPermissions struct {
	Environment []string             `yaml:"environment"`
	Network     []string             `yaml:"network"`
	Filesystem  ManifestFsPermission `yaml:"filesystem"`
	Exec        ManifestExecPermission `yaml:"exec"`
	System      []string             `yaml:"system"`
	Clipboard   []string             `yaml:"clipboard"`
	MainSearchBar []string           `yaml:"main_search_bar"`
}

type ManifestFsPermission struct {
	Read  []string `yaml:"read"`
	Write []string `yaml:"write"`
}

type ManifestExecPermission struct {
	Command    []string `yaml:"command"`
	Executable []string `yaml:"executable"`
}

// ParseManifest decodes a gauntlet.yaml document. Malformed input surfaces
// as ConfigError.
func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, NewConfigError("parse_manifest", fmt.Sprintf("invalid manifest: %v", err), err)
	}
	if m.Name == "" {
		return nil, NewConfigError("parse_manifest", "manifest missing required field \"name\"", nil)
	}
	for _, ep := range m.Entrypoints {
		if ep.ID == "" {
			return nil, NewConfigError("parse_manifest", "entrypoint missing required field \"id\"", nil)
		}
		switch EntrypointType(ep.Type) {
		case EntrypointCommand, EntrypointView, EntrypointInlineView, EntrypointGeneratorEntrypoint:
		default:
			return nil, NewConfigError("parse_manifest", fmt.Sprintf("entrypoint %q has unknown type %q", ep.ID, ep.Type), nil)
		}
	}
	return &m, nil
}

// ToPermissions converts the manifest's declared permission lists into the
// runtime Permissions set used for capability checks.
func (m *Manifest) ToPermissions() Permissions {
	p := Permissions{
		Environment:     toSet(m.Permissions.Environment),
		Network:         toSet(m.Permissions.Network),
		FilesystemRead:  toSet(m.Permissions.Filesystem.Read),
		FilesystemWrite: toSet(m.Permissions.Filesystem.Write),
		ExecCommand:     toSet(m.Permissions.Exec.Command),
		ExecExecutable:  toSet(m.Permissions.Exec.Executable),
		System:          toSet(m.Permissions.System),
		Clipboard:       map[ClipboardPermission]struct{}{},
		MainSearchBar:   map[MainSearchBarPermission]struct{}{},
	}
	for _, c := range m.Permissions.Clipboard {
		p.Clipboard[ClipboardPermission(c)] = struct{}{}
	}
	for _, c := range m.Permissions.MainSearchBar {
		p.MainSearchBar[MainSearchBarPermission(c)] = struct{}{}
	}
	return p
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}
