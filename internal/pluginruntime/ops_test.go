package pluginruntime

import (
	"context"
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testSchema() *widgetmodel.Schema {
	return &widgetmodel.Schema{
		Components: map[string]widgetmodel.ComponentDef{
			"Text": {Children: widgetmodel.ChildrenSpec{Kind: widgetmodel.ChildrenString}},
		},
	}
}

func newTestOps(t *testing.T, perms domain.Permissions) (*Ops, chan Event, *FakeClipboard) {
	t.Helper()
	events := make(chan Event, 8)
	clip := &FakeClipboard{}
	ops := NewOps(testPluginID, perms, testSchema(), nil, events, nil, clip, zap.NewNop(), OpsMetadata{})
	return ops, events, clip
}

// P7: an op gated on a permission the plugin did not declare fails with
// ErrorCodePermissionDenied instead of performing the action.
func TestOps_P7_ClipboardDeniedWithoutPermission(t *testing.T) {
	ops, _, clip := newTestOps(t, domain.Permissions{Clipboard: map[domain.ClipboardPermission]struct{}{}})
	clip.Text = "secret"

	_, err := ops.ClipboardRead()
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodePermissionDenied, domainErr.Code)
}

func TestOps_ClipboardRoundTripWithPermission(t *testing.T) {
	perms := domain.Permissions{Clipboard: map[domain.ClipboardPermission]struct{}{
		domain.ClipboardRead:  {},
		domain.ClipboardWrite: {},
	}}
	ops, _, _ := newTestOps(t, perms)

	require.NoError(t, ops.ClipboardWrite("hello"))
	got, err := ops.ClipboardRead()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestOps_GetEnv_DeniedForUndeclaredVar(t *testing.T) {
	ops, _, _ := newTestOps(t, domain.Permissions{Environment: map[string]struct{}{"HOME": {}}})
	_, err := ops.GetEnv("SECRET_TOKEN")
	require.Error(t, err)
}

func TestOps_RunCommand_DeniedForUnlistedExecutable(t *testing.T) {
	ops, _, _ := newTestOps(t, domain.Permissions{ExecCommand: map[string]struct{}{"ls": {}}})
	_, err := ops.RunCommand(context.Background(), []string{"rm", "-rf", "/"})
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodePermissionDenied, domainErr.Code)
}

func TestOps_FetchURL_DeniedForUndeclaredHost(t *testing.T) {
	ops, _, _ := newTestOps(t, domain.Permissions{Network: map[string]struct{}{"api.example.com:443": {}}})
	_, err := ops.FetchURL(context.Background(), "https://evil.example.com/", "evil.example.com:443")
	require.Error(t, err)
}

func TestOps_ReplaceView_EmitsOpenViewEvent(t *testing.T) {
	ops, events, _ := newTestOps(t, domain.Permissions{})
	root := domain.Widget{WidgetID: 1, WidgetType: "Text"}

	require.NoError(t, ops.ReplaceView("view-1", root))

	select {
	case ev := <-events:
		assert.Equal(t, EventOpenView, ev.Kind)
		assert.Equal(t, "view-1", ev.EntrypointID)
		require.NotNil(t, ev.Widget)
		assert.Equal(t, uint32(1), ev.Widget.WidgetID)
	default:
		t.Fatal("expected an event to be emitted")
	}
}

func TestOps_ReplaceView_RejectsUnknownComponent(t *testing.T) {
	ops, _, _ := newTestOps(t, domain.Permissions{})
	root := domain.Widget{WidgetID: 1, WidgetType: "NoSuchComponent"}

	err := ops.ReplaceView("view-1", root)
	require.Error(t, err)
}

func TestOps_PluginPreferencesRequired(t *testing.T) {
	meta := OpsMetadata{
		PluginPreferences: map[string]domain.PreferenceSchema{
			"apiKey": {Kind: domain.PreferenceString, Required: true},
		},
	}
	events := make(chan Event, 1)
	ops := NewOps(testPluginID, domain.Permissions{}, testSchema(), nil, events, nil, &FakeClipboard{}, zap.NewNop(), meta)

	assert.True(t, ops.PluginPreferencesRequired())
	ops.SetPreference("apiKey", domain.PreferenceValue{Kind: domain.PreferenceString, String: "abc"})
	assert.False(t, ops.PluginPreferencesRequired())
}

func TestOps_GetEntrypointGeneratorEntrypointIDs(t *testing.T) {
	meta := OpsMetadata{GeneratorEntrypointIDs: []string{"gen-1", "gen-2"}}
	events := make(chan Event, 1)
	ops := NewOps(testPluginID, domain.Permissions{}, testSchema(), nil, events, nil, &FakeClipboard{}, zap.NewNop(), meta)

	assert.Equal(t, []string{"gen-1", "gen-2"}, ops.GetEntrypointGeneratorEntrypointIDs())
}

func TestOps_PreferenceStorageRoundTrip(t *testing.T) {
	ops, _, _ := newTestOps(t, domain.Permissions{})
	ops.SetPreference("theme", domain.PreferenceValue{Kind: domain.PreferenceString, String: "dark"})
	assert.Equal(t, "dark", ops.GetPreference("theme").String)

	ops.SetEntrypointPreference("e1", "limit", domain.PreferenceValue{Kind: domain.PreferenceNumber, Number: 10})
	assert.Equal(t, float64(10), ops.GetEntrypointPreference("e1", "limit").Number)
	assert.Equal(t, domain.PreferenceKind(""), ops.GetEntrypointPreference("e2", "limit").Kind)
}
