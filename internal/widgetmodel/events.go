package widgetmodel

import "sync"

// Handler is an opaque callback reference. PluginRuntime supplies the
// concrete goja callable; widgetmodel only needs to store and retrieve it.
type Handler interface{}

// EventTable is the side table mapping (widget_id, property_name) to the
// function-valued property the plugin attached at that slot when it last
// called replace_view for one entrypoint. Functions are stripped from the
// serialized tree and recorded here instead.
type EventTable struct {
	mu       sync.RWMutex
	handlers map[EventListenerKey]Handler
}

func NewEventTable() *EventTable {
	return &EventTable{handlers: make(map[EventListenerKey]Handler)}
}

// Replace atomically swaps the table's contents for one entrypoint's tree.
// Callers pass the listener keys discovered by Validate along with the
// matching Handler extracted from the original (pre-validation) JS value.
func (t *EventTable) Replace(handlers map[EventListenerKey]Handler) {
	t.mu.Lock()
	t.handlers = handlers
	t.mu.Unlock()
}

// Lookup returns the handler registered for (widgetID, property), if any.
func (t *EventTable) Lookup(widgetID uint32, property string) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handlers[EventListenerKey{WidgetID: widgetID, Property: property}]
	return h, ok
}

// Clear empties the table, used when a view is closed.
func (t *EventTable) Clear() {
	t.mu.Lock()
	t.handlers = make(map[EventListenerKey]Handler)
	t.mu.Unlock()
}
