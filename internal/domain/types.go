// Package domain holds the entity types shared across the plugin host:
// plugins, entrypoints, permissions, widgets, and search/frecency records.
package domain

import "time"

// PluginID is a URI-like identifier: bundled://, file://, or a Git URL.
type PluginID string

// Plugin is a loaded plugin's persisted metadata plus its in-memory code map.
type Plugin struct {
	ID                     PluginID
	UUID                   string
	Name                   string
	Description            string
	Enabled                bool
	Code                   PluginCode
	Permissions            Permissions
	Preferences            map[string]PreferenceSchema
	PreferencesUserData    map[string]PreferenceValue
}

// Entrypoint is a named invocable unit within a plugin.
type Entrypoint struct {
	ID                  string
	UUID                string
	PluginID            PluginID
	Name                string
	Description         string
	Enabled             bool
	Type                EntrypointType
	Preferences         map[string]PreferenceSchema
	PreferencesUserData map[string]PreferenceValue
	Actions             []Action
	ActionsUserData     []ActionOverride
	IconPath            string
}

// EntrypointType is the closed set of entrypoint kinds.
type EntrypointType string

const (
	EntrypointCommand             EntrypointType = "command"
	EntrypointView                EntrypointType = "view"
	EntrypointInlineView          EntrypointType = "inline_view"
	EntrypointGeneratorEntrypoint EntrypointType = "entrypoint_generator"
)

// Action is a declared action slot on an entrypoint (e.g. :primary, :secondary, or a named id).
type Action struct {
	ID       string
	Label    string
	Shortcut *PhysicalShortcut
}

// ActionOverride records a per-user shortcut override for a declared action.
type ActionOverride struct {
	ActionID string
	Shortcut *PhysicalShortcut
}

// GeneratedEntrypoint is transient output of an EntrypointGenerator; never persisted.
type GeneratedEntrypoint struct {
	EntrypointID          string
	GeneratorEntrypointID string
	Name                  string
	IconBytes             []byte
	Actions               []GeneratedAction
}

// GeneratedAction is one action published by a generated entrypoint.
type GeneratedAction struct {
	ID    string
	Label string
}

// PluginCode maps entrypoint name to JS source text, plus bridge modules.
type PluginCode struct {
	InitJS            string
	EntrypointSources map[string]string
	ModuleSources     map[string]string
}

// Permissions is the immutable-per-runtime capability grant set.
type Permissions struct {
	Environment   map[string]struct{}
	Network       map[string]struct{} // "host:port" entries
	FilesystemRead  map[string]struct{} // path patterns, may embed {os:var} tokens
	FilesystemWrite map[string]struct{}
	ExecCommand   map[string]struct{}
	ExecExecutable map[string]struct{}
	System        map[string]struct{}
	Clipboard     map[ClipboardPermission]struct{}
	MainSearchBar map[MainSearchBarPermission]struct{}
}

type ClipboardPermission string

const (
	ClipboardRead  ClipboardPermission = "read"
	ClipboardWrite ClipboardPermission = "write"
	ClipboardClear ClipboardPermission = "clear"
)

type MainSearchBarPermission string

const (
	MainSearchBarRead MainSearchBarPermission = "read"
)

// HasClipboard reports whether p grants clipboard capability c.
func (p Permissions) HasClipboard(c ClipboardPermission) bool {
	_, ok := p.Clipboard[c]
	return ok
}

// HasMainSearchBar reports whether p grants the main-search-bar capability c.
func (p Permissions) HasMainSearchBar(c MainSearchBarPermission) bool {
	_, ok := p.MainSearchBar[c]
	return ok
}

// PhysicalKey is the closed enum of keys a PhysicalShortcut may bind.
type PhysicalKey string

// PhysicalShortcut is a modifier set plus a physical key, used both for the
// global activation shortcut and per-entrypoint hotkeys.
type PhysicalShortcut struct {
	PhysicalKey    PhysicalKey
	ModifierShift  bool
	ModifierControl bool
	ModifierAlt    bool
	ModifierMeta   bool
}

// PreferenceKind tags the PreferenceValue union.
type PreferenceKind string

const (
	PreferenceNumber        PreferenceKind = "number"
	PreferenceString        PreferenceKind = "string"
	PreferenceEnum          PreferenceKind = "enum"
	PreferenceBool          PreferenceKind = "bool"
	PreferenceListOfStrings PreferenceKind = "list_of_strings"
	PreferenceListOfNumbers PreferenceKind = "list_of_numbers"
	PreferenceListOfEnums   PreferenceKind = "list_of_enums"
)

// PreferenceValue is a tagged union over the declared preference kinds.
type PreferenceValue struct {
	Kind         PreferenceKind
	Number       float64
	String       string
	Bool         bool
	ListStrings  []string
	ListNumbers  []float64
	ListEnums    []string
}

// EnumOption is one {label, value} pair for an Enum-kind preference.
type EnumOption struct {
	Label string
	Value string
}

// PreferenceSchema declares the shape and constraints for one preference.
type PreferenceSchema struct {
	Kind         PreferenceKind
	EnumOptions  []EnumOption
	Required     bool
	Default      *PreferenceValue
}

// SearchIndexItem is one entrypoint's stored representation in the search index.
type SearchIndexItem struct {
	PluginID          PluginID
	EntrypointID      string
	EntrypointType    EntrypointType
	EntrypointName    string
	EntrypointIconPath string
	EntrypointFrecency float64
	EntrypointActions  []SearchActionRef
}

// SearchActionRef is the minimal action info surfaced in a search result.
type SearchActionRef struct {
	Label    string
	Shortcut *PhysicalShortcut
}

// FrecencyStats tracks the exponential-decay frecency score for one (plugin, entrypoint) pair.
type FrecencyStats struct {
	ReferenceTime time.Time
	HalfLife      time.Duration
	LastAccessed  time.Time
	Frecency      float64
	NumAccesses   int
}

// Widget is one node in a rendered tree.
type Widget struct {
	WidgetID uint32
	WidgetType string
	Properties map[string]PropertyValue
	// Children holds component children, used when the schema's children
	// kind is members or string_or_members.
	Children []Widget
	// TextContent holds string children, used when the schema's children
	// kind is string or string_or_members.
	TextContent *string
}
