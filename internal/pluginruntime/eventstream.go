package pluginruntime

import "github.com/gauntlet-host/launcherd/internal/domain"

// EventKind is the closed set of host-bound events a runtime can emit while
// executing plugin JS.
type EventKind string

const (
	EventOpenView               EventKind = "open_view"
	EventCloseView              EventKind = "close_view"
	EventRunCommand             EventKind = "run_command"
	EventRunGeneratedEntrypoint EventKind = "run_generated_entrypoint"
	EventHandleViewEvent        EventKind = "handle_view_event"
	EventHandleKeyboardEvent    EventKind = "handle_keyboard_event"
	EventOpenInlineView         EventKind = "open_inline_view"
	EventReloadSearchIndex      EventKind = "reload_search_index"
	EventRefreshSearchIndex     EventKind = "refresh_search_index"
)

// Event is one host-bound notification raised by a running plugin.
type Event struct {
	Kind         EventKind
	PluginID     domain.PluginID
	EntrypointID string
	Widget       *domain.Widget
	Text         string
	Err          error
}
