package pluginruntime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/searchindex"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
	"go.uber.org/zap"
)

// ClipboardBackend is the injected seam to the OS clipboard, mirroring
// globalshortcut.HotkeyBackend's pattern: a real backend lives outside this
// repo's scope, tests use an in-memory fake.
type ClipboardBackend interface {
	Read() (string, error)
	Write(text string) error
	Clear() error
}

// FakeClipboard is an in-memory ClipboardBackend for tests and for plugins
// running without a real desktop session.
type FakeClipboard struct {
	Text string
}

func (c *FakeClipboard) Read() (string, error)   { return c.Text, nil }
func (c *FakeClipboard) Write(text string) error { c.Text = text; return nil }
func (c *FakeClipboard) Clear() error             { c.Text = ""; return nil }

// OpsMetadata carries the plugin-level data Ops needs beyond permissions:
// declared preference schemas and current values, and which of the plugin's
// own entrypoints are enabled entrypoint generators.
type OpsMetadata struct {
	PluginPreferences          map[string]domain.PreferenceSchema
	PluginPreferenceValues     map[string]domain.PreferenceValue
	EntrypointPreferences      map[string]map[string]domain.PreferenceSchema
	EntrypointPreferenceValues map[string]map[string]domain.PreferenceValue
	GeneratorEntrypointIDs     []string
}

// Ops is the permission-gated host API surface bound into one plugin's
// runtime: UI rendering, schema introspection, preferences, assets,
// clipboard, env/system, search, and entrypoint generation. bridge.go
// exposes these methods to plugin JS under gauntlet:core and the
// @project-gauntlet/api/* and gauntlet:bridge/internal-* module specifiers.
type Ops struct {
	pluginID    domain.PluginID
	permissions domain.Permissions
	logger      *zap.Logger

	schema     *widgetmodel.Schema
	assetStore widgetmodel.AssetStore
	events     chan<- Event
	searchIdx  *searchindex.Index
	clipboard  ClipboardBackend
	httpClient *http.Client

	preferences     map[string]domain.PreferenceValue
	entrypointPrefs map[string]map[string]domain.PreferenceValue

	pluginPrefSchemas      map[string]domain.PreferenceSchema
	entrypointPrefSchemas  map[string]map[string]domain.PreferenceSchema
	generatorEntrypointIDs []string
}

// NewOps constructs the op table bound to one plugin's permissions.
func NewOps(pluginID domain.PluginID, permissions domain.Permissions, schema *widgetmodel.Schema,
	assetStore widgetmodel.AssetStore, events chan<- Event, searchIdx *searchindex.Index,
	clipboard ClipboardBackend, logger *zap.Logger, meta OpsMetadata) *Ops {
	preferences := map[string]domain.PreferenceValue{}
	for name, v := range meta.PluginPreferenceValues {
		preferences[name] = v
	}
	entrypointPrefs := map[string]map[string]domain.PreferenceValue{}
	for entrypointID, values := range meta.EntrypointPreferenceValues {
		m := make(map[string]domain.PreferenceValue, len(values))
		for name, v := range values {
			m[name] = v
		}
		entrypointPrefs[entrypointID] = m
	}
	return &Ops{
		pluginID:               pluginID,
		permissions:            permissions,
		logger:                 logger,
		schema:                 schema,
		assetStore:             assetStore,
		events:                 events,
		searchIdx:              searchIdx,
		clipboard:              clipboard,
		httpClient:             &http.Client{Timeout: 10 * time.Second},
		preferences:            preferences,
		entrypointPrefs:        entrypointPrefs,
		pluginPrefSchemas:      meta.PluginPreferences,
		entrypointPrefSchemas:  meta.EntrypointPreferences,
		generatorEntrypointIDs: meta.GeneratorEntrypointIDs,
	}
}

func (o *Ops) denied(op string) error {
	return domain.NewPermissionDenied(o.pluginID, op)
}

// --- UI rendering ---------------------------------------------------------

// ReplaceView validates a freshly rendered tree and, if it passes, emits an
// open_view event carrying the validated widget.
func (o *Ops) ReplaceView(entrypointID string, root domain.Widget) error {
	validated, err := widgetmodel.Validate(o.schema, o.pluginID, root)
	if err != nil {
		return err
	}
	w := validated.Root
	o.events <- Event{Kind: EventOpenView, PluginID: o.pluginID, EntrypointID: entrypointID, Widget: &w}
	return nil
}

// ReplaceInlineView mirrors ReplaceView for the always-on inline-view surface.
func (o *Ops) ReplaceInlineView(entrypointID string, root domain.Widget) error {
	validated, err := widgetmodel.Validate(o.schema, o.pluginID, root)
	if err != nil {
		return err
	}
	w := validated.Root
	o.events <- Event{Kind: EventOpenInlineView, PluginID: o.pluginID, EntrypointID: entrypointID, Widget: &w}
	return nil
}

// CloseView closes the currently open view for an entrypoint.
func (o *Ops) CloseView(entrypointID string) {
	o.events <- Event{Kind: EventCloseView, PluginID: o.pluginID, EntrypointID: entrypointID}
}

// Schema exposes the component schema for client-side type checking in
// development mode; not permission-gated, it describes no plugin data.
func (o *Ops) Schema() *widgetmodel.Schema {
	return o.schema
}

// --- preferences -----------------------------------------------------------

func (o *Ops) GetPreference(name string) domain.PreferenceValue {
	return o.preferences[name]
}

func (o *Ops) SetPreference(name string, v domain.PreferenceValue) {
	o.preferences[name] = v
}

func (o *Ops) GetEntrypointPreference(entrypointID, name string) domain.PreferenceValue {
	return o.entrypointPrefs[entrypointID][name]
}

func (o *Ops) SetEntrypointPreference(entrypointID, name string, v domain.PreferenceValue) {
	m, ok := o.entrypointPrefs[entrypointID]
	if !ok {
		m = map[string]domain.PreferenceValue{}
		o.entrypointPrefs[entrypointID] = m
	}
	m[name] = v
}

// GetPluginPreferences returns the plugin-scoped preference values currently
// held, keyed by preference name.
func (o *Ops) GetPluginPreferences() map[string]domain.PreferenceValue {
	out := make(map[string]domain.PreferenceValue, len(o.preferences))
	for k, v := range o.preferences {
		out[k] = v
	}
	return out
}

// GetEntrypointPreferences returns entrypointID's preference values.
func (o *Ops) GetEntrypointPreferences(entrypointID string) map[string]domain.PreferenceValue {
	src := o.entrypointPrefs[entrypointID]
	out := make(map[string]domain.PreferenceValue, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// PluginPreferencesRequired reports whether any plugin-scoped preference
// declared Required in its schema has no stored value yet.
func (o *Ops) PluginPreferencesRequired() bool {
	return preferencesMissing(o.pluginPrefSchemas, o.preferences)
}

// EntrypointPreferencesRequired mirrors PluginPreferencesRequired for one entrypoint.
func (o *Ops) EntrypointPreferencesRequired(entrypointID string) bool {
	return preferencesMissing(o.entrypointPrefSchemas[entrypointID], o.entrypointPrefs[entrypointID])
}

func preferencesMissing(schemas map[string]domain.PreferenceSchema, values map[string]domain.PreferenceValue) bool {
	for name, schema := range schemas {
		if !schema.Required {
			continue
		}
		if _, ok := values[name]; !ok {
			return true
		}
	}
	return false
}

// --- assets ------------------------------------------------------------

// AssetData reads one bundled asset's bytes. Requires no permission: assets
// ship inside the plugin bundle the user already installed.
func (o *Ops) AssetData(ctx context.Context, assetPath string) ([]byte, error) {
	if o.assetStore == nil {
		return nil, fmt.Errorf("pluginruntime: no asset store configured")
	}
	return o.assetStore.AssetData(ctx, o.pluginID, assetPath)
}

// --- clipboard -----------------------------------------------------------

func (o *Ops) ClipboardRead() (string, error) {
	if !o.permissions.HasClipboard(domain.ClipboardRead) {
		return "", o.denied("clipboard_read")
	}
	return o.clipboard.Read()
}

func (o *Ops) ClipboardWrite(text string) error {
	if !o.permissions.HasClipboard(domain.ClipboardWrite) {
		return o.denied("clipboard_write")
	}
	return o.clipboard.Write(text)
}

func (o *Ops) ClipboardClear() error {
	if !o.permissions.HasClipboard(domain.ClipboardClear) {
		return o.denied("clipboard_clear")
	}
	return o.clipboard.Clear()
}

// --- environment / system -------------------------------------------------

func (o *Ops) GetEnv(name string) (string, error) {
	if _, ok := o.permissions.Environment[name]; !ok {
		return "", o.denied("environment")
	}
	return os.Getenv(name), nil
}

// RunCommand shells out to an allow-listed command. argv[0] must be in
// either ExecCommand (looked up on PATH) or ExecExecutable (absolute path).
func (o *Ops) RunCommand(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("pluginruntime: empty command")
	}
	_, byCommand := o.permissions.ExecCommand[argv[0]]
	_, byExecutable := o.permissions.ExecExecutable[argv[0]]
	if !byCommand && !byExecutable {
		return nil, o.denied("exec")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	return cmd.Output()
}

// FetchURL performs a permission-gated outbound HTTP GET against a
// host:port the plugin declared in its Network permission set.
func (o *Ops) FetchURL(ctx context.Context, url, hostPort string) ([]byte, error) {
	if _, ok := o.permissions.Network[hostPort]; !ok {
		return nil, o.denied("network")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// --- search ----------------------------------------------------------------

func (o *Ops) ReloadSearchIndex(entrypointID string) {
	o.events <- Event{Kind: EventReloadSearchIndex, PluginID: o.pluginID, EntrypointID: entrypointID}
}

func (o *Ops) RefreshSearchIndex(entrypointID string) {
	o.events <- Event{Kind: EventRefreshSearchIndex, PluginID: o.pluginID, EntrypointID: entrypointID}
}

// --- entrypoint generation --------------------------------------------------

// RunGeneratedEntrypoint signals the host to invoke a generated entrypoint
// produced by this plugin's generator.
func (o *Ops) RunGeneratedEntrypoint(generatorEntrypointID, generatedID string) {
	o.events <- Event{Kind: EventRunGeneratedEntrypoint, PluginID: o.pluginID, EntrypointID: generatorEntrypointID, Text: generatedID}
}

// GetEntrypointGeneratorEntrypointIDs returns the ids of this plugin's own
// enabled entrypoint-generator entrypoints.
func (o *Ops) GetEntrypointGeneratorEntrypointIDs() []string {
	return o.generatorEntrypointIDs
}
