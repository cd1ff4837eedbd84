package widgetmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// PropertyOrder records, per widget_id, the order in which properties were
// declared by the plugin — the wire format is an ordered, tagged array so a
// round-trip through Serialize/Deserialize is byte-identical.
type PropertyOrder map[uint32][]string

type wireWidget struct {
	WidgetID    uint32         `json:"widget_id"`
	WidgetType  string         `json:"widget_type"`
	Properties  []wireProperty `json:"properties"`
	Children    []wireWidget   `json:"children,omitempty"`
	TextContent *string        `json:"text_content,omitempty"`
}

type wireProperty struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

type wireValue struct {
	Kind      string         `json:"kind"`
	String    *string        `json:"string,omitempty"`
	Number    *float64       `json:"number,omitempty"`
	Bool      *bool          `json:"bool,omitempty"`
	Bytes     []byte         `json:"bytes,omitempty"`
	Object    []wireProperty `json:"object,omitempty"`
	Array     []wireValue    `json:"array,omitempty"`
	Component *wireWidget    `json:"component,omitempty"`
}

// Serialize encodes a validated tree as an ordered, tagged-array JSON
// document. order supplies each widget's property declaration order;
// properties absent from order are appended in sorted-key order so the
// output stays deterministic.
func Serialize(w domain.Widget, order PropertyOrder) ([]byte, error) {
	wire := toWire(w, order)
	return json.Marshal(wire)
}

// Deserialize strictly decodes a wire document back into a Widget plus the
// PropertyOrder observed on the wire.
func Deserialize(data []byte) (domain.Widget, PropertyOrder, error) {
	var wire wireWidget
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return domain.Widget{}, nil, fmt.Errorf("decode widget tree: %w", err)
	}
	order := make(PropertyOrder)
	w := fromWire(wire, order)
	return w, order, nil
}

func toWire(w domain.Widget, order PropertyOrder) wireWidget {
	names := orderedPropertyNames(w, order)
	props := make([]wireProperty, 0, len(names))
	for _, name := range names {
		val, ok := w.Properties[name]
		if !ok {
			continue
		}
		props = append(props, wireProperty{Name: name, Value: toWireValue(val, order)})
	}
	children := make([]wireWidget, 0, len(w.Children))
	for _, c := range w.Children {
		children = append(children, toWire(c, order))
	}
	return wireWidget{
		WidgetID:    w.WidgetID,
		WidgetType:  w.WidgetType,
		Properties:  props,
		Children:    children,
		TextContent: w.TextContent,
	}
}

func orderedPropertyNames(w domain.Widget, order PropertyOrder) []string {
	if names, ok := order[w.WidgetID]; ok {
		listed := make(map[string]struct{}, len(names))
		for _, n := range names {
			listed[n] = struct{}{}
		}
		var extra []string
		for name := range w.Properties {
			if _, ok := listed[name]; !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return append(append([]string(nil), names...), extra...)
	}
	names := make([]string, 0, len(w.Properties))
	for name := range w.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toWireValue(v domain.PropertyValue, order PropertyOrder) wireValue {
	switch v.Kind {
	case domain.ValueString:
		s := v.String
		return wireValue{Kind: string(v.Kind), String: &s}
	case domain.ValueNumber:
		n := v.Number
		return wireValue{Kind: string(v.Kind), Number: &n}
	case domain.ValueBool:
		b := v.Bool
		return wireValue{Kind: string(v.Kind), Bool: &b}
	case domain.ValueBytes:
		return wireValue{Kind: string(v.Kind), Bytes: v.Bytes}
	case domain.ValueUndefined:
		return wireValue{Kind: string(v.Kind)}
	case domain.ValueObject:
		names := make([]string, 0, len(v.Object))
		for name := range v.Object {
			names = append(names, name)
		}
		sort.Strings(names)
		props := make([]wireProperty, 0, len(names))
		for _, name := range names {
			props = append(props, wireProperty{Name: name, Value: toWireValue(v.Object[name], order)})
		}
		return wireValue{Kind: string(v.Kind), Object: props}
	case domain.ValueArray:
		items := make([]wireValue, 0, len(v.Array))
		for _, item := range v.Array {
			items = append(items, toWireValue(item, order))
		}
		return wireValue{Kind: string(v.Kind), Array: items}
	case domain.ValueComponent:
		if v.Component == nil {
			return wireValue{Kind: string(v.Kind)}
		}
		wc := toWire(*v.Component, order)
		return wireValue{Kind: string(v.Kind), Component: &wc}
	default:
		return wireValue{Kind: string(v.Kind)}
	}
}

func fromWire(w wireWidget, order PropertyOrder) domain.Widget {
	names := make([]string, 0, len(w.Properties))
	props := make(map[string]domain.PropertyValue, len(w.Properties))
	for _, p := range w.Properties {
		names = append(names, p.Name)
		props[p.Name] = fromWireValue(p.Value, order)
	}
	order[w.WidgetID] = names

	children := make([]domain.Widget, 0, len(w.Children))
	for _, c := range w.Children {
		children = append(children, fromWire(c, order))
	}
	return domain.Widget{
		WidgetID:    w.WidgetID,
		WidgetType:  w.WidgetType,
		Properties:  props,
		Children:    children,
		TextContent: w.TextContent,
	}
}

func fromWireValue(v wireValue, order PropertyOrder) domain.PropertyValue {
	kind := domain.PropertyValueKind(v.Kind)
	out := domain.PropertyValue{Kind: kind}
	switch kind {
	case domain.ValueString:
		if v.String != nil {
			out.String = *v.String
		}
	case domain.ValueNumber:
		if v.Number != nil {
			out.Number = *v.Number
		}
	case domain.ValueBool:
		if v.Bool != nil {
			out.Bool = *v.Bool
		}
	case domain.ValueBytes:
		out.Bytes = v.Bytes
	case domain.ValueObject:
		out.Object = make(map[string]domain.PropertyValue, len(v.Object))
		for _, p := range v.Object {
			out.Object[p.Name] = fromWireValue(p.Value, order)
		}
	case domain.ValueArray:
		out.Array = make([]domain.PropertyValue, 0, len(v.Array))
		for _, item := range v.Array {
			out.Array = append(out.Array, fromWireValue(item, order))
		}
	case domain.ValueComponent:
		if v.Component != nil {
			c := fromWire(*v.Component, order)
			out.Component = &c
		}
	}
	return out
}
