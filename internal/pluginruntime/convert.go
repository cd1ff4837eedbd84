package pluginruntime

import (
	"fmt"
	"reflect"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
)

// widgetBuilder turns the plain Go value tree exported from a plugin's
// render() return value (shape {type, props, children}, as produced by the
// React.createElement shim) into a domain.Widget tree, assigning sequential
// widget ids and collecting function-valued properties into a listener
// table keyed by the id each listener ended up with.
type widgetBuilder struct {
	nextID   uint32
	handlers map[widgetmodel.EventListenerKey]widgetmodel.Handler
}

func newWidgetBuilder() *widgetBuilder {
	return &widgetBuilder{handlers: make(map[widgetmodel.EventListenerKey]widgetmodel.Handler)}
}

func (b *widgetBuilder) build(v interface{}) (domain.Widget, error) {
	node, ok := v.(map[string]interface{})
	if !ok {
		return domain.Widget{}, fmt.Errorf("pluginruntime: rendered node is not an object")
	}

	widgetType, _ := node["type"].(string)
	b.nextID++
	w := domain.Widget{WidgetID: b.nextID, WidgetType: widgetType, Properties: map[string]domain.PropertyValue{}}

	if props, ok := node["props"].(map[string]interface{}); ok {
		for name, raw := range props {
			if name == "children" {
				continue
			}
			pv, handler := b.convertValue(raw)
			w.Properties[name] = pv
			if handler != nil {
				b.handlers[widgetmodel.EventListenerKey{WidgetID: w.WidgetID, Property: name}] = handler
			}
		}
	}

	if children, ok := node["children"].([]interface{}); ok {
		for _, c := range children {
			if s, ok := c.(string); ok {
				text := s
				w.TextContent = &text
				continue
			}
			child, err := b.build(c)
			if err != nil {
				return domain.Widget{}, err
			}
			w.Children = append(w.Children, child)
		}
	}

	return w, nil
}

func (b *widgetBuilder) convertValue(raw interface{}) (domain.PropertyValue, widgetmodel.Handler) {
	switch v := raw.(type) {
	case nil:
		return domain.PropertyValue{Kind: domain.ValueUndefined}, nil
	case string:
		return domain.PropertyValue{Kind: domain.ValueString, String: v}, nil
	case float64:
		return domain.PropertyValue{Kind: domain.ValueNumber, Number: v}, nil
	case int64:
		return domain.PropertyValue{Kind: domain.ValueNumber, Number: float64(v)}, nil
	case bool:
		return domain.PropertyValue{Kind: domain.ValueBool, Bool: v}, nil
	case []byte:
		return domain.PropertyValue{Kind: domain.ValueBytes, Bytes: v}, nil
	case []interface{}:
		arr := make([]domain.PropertyValue, 0, len(v))
		for _, item := range v {
			pv, _ := b.convertValue(item)
			arr = append(arr, pv)
		}
		return domain.PropertyValue{Kind: domain.ValueArray, Array: arr}, nil
	case map[string]interface{}:
		if _, isWidget := v["type"]; isWidget {
			child, err := b.build(v)
			if err == nil {
				return domain.PropertyValue{Kind: domain.ValueComponent, Component: &child}, nil
			}
		}
		obj := map[string]domain.PropertyValue{}
		for k, item := range v {
			pv, _ := b.convertValue(item)
			obj[k] = pv
		}
		return domain.PropertyValue{Kind: domain.ValueObject, Object: obj}, nil
	default:
		// goja exports a JS function value as a native Go func (its exact
		// signature is an engine-internal detail); any func-kind value
		// becomes an event listener rather than a widget property.
		if rv := reflect.ValueOf(raw); rv.IsValid() && rv.Kind() == reflect.Func {
			return domain.PropertyValue{Kind: domain.ValueFunction}, widgetmodel.Handler(raw)
		}
		return domain.PropertyValue{Kind: domain.ValueUndefined}, nil
	}
}

// propertyValueToGo converts a domain.PropertyValue back into the plain Go
// value shape a handler invocation passes as an argument.
func propertyValueToGo(pv domain.PropertyValue) interface{} {
	switch pv.Kind {
	case domain.ValueString:
		return pv.String
	case domain.ValueNumber:
		return pv.Number
	case domain.ValueBool:
		return pv.Bool
	case domain.ValueBytes:
		return pv.Bytes
	case domain.ValueArray:
		arr := make([]interface{}, len(pv.Array))
		for i, item := range pv.Array {
			arr[i] = propertyValueToGo(item)
		}
		return arr
	case domain.ValueObject:
		obj := make(map[string]interface{}, len(pv.Object))
		for k, item := range pv.Object {
			obj[k] = propertyValueToGo(item)
		}
		return obj
	default:
		return nil
	}
}
