package widgetmodel

import (
	"github.com/gauntlet-host/launcherd/internal/domain"
)

// EventListenerKey identifies one function-valued property slot in a
// validated tree, recorded so a later HandleViewEvent dispatch can invoke it.
type EventListenerKey struct {
	WidgetID uint32
	Property string
}

// ValidatedTree is the result of a successful Validate call: the original
// tree (function values left in place) plus the set of function-valued
// property slots found in it.
type ValidatedTree struct {
	Root      domain.Widget
	Listeners map[EventListenerKey]struct{}
}

// Validate walks root recursively against schema, enforcing: unknown
// components, property type conformance, child arity and allowed child types,
// singleton violations, and widget_id uniqueness.
func Validate(schema *Schema, pluginID domain.PluginID, root domain.Widget) (*ValidatedTree, error) {
	seen := make(map[uint32]struct{})
	listeners := make(map[EventListenerKey]struct{})
	if err := validateNode(schema, pluginID, root, seen, listeners); err != nil {
		return nil, err
	}
	return &ValidatedTree{Root: root, Listeners: listeners}, nil
}

func validateNode(schema *Schema, pluginID domain.PluginID, w domain.Widget, seen map[uint32]struct{}, listeners map[EventListenerKey]struct{}) error {
	if _, dup := seen[w.WidgetID]; dup {
		return domain.NewDuplicateWidgetID(pluginID, w.WidgetID)
	}
	seen[w.WidgetID] = struct{}{}

	def, ok := schema.Components[w.WidgetType]
	if !ok {
		return domain.NewUnknownComponent(pluginID, w.WidgetType)
	}

	for name := range def.Required {
		if _, ok := w.Properties[name]; !ok {
			return domain.NewTypeMismatch(pluginID, name)
		}
	}
	for name, value := range w.Properties {
		propType, ok := def.Properties[name]
		if !ok {
			// Unknown fields are rejected, not ignored.
			return domain.NewTypeMismatch(pluginID, name)
		}
		if propType.Tag == domain.PropertyTypeFunction {
			if value.Kind != domain.ValueFunction {
				return domain.NewTypeMismatch(pluginID, name)
			}
			listeners[EventListenerKey{WidgetID: w.WidgetID, Property: name}] = struct{}{}
			continue
		}
		if !matchesType(schema, propType, value) {
			return domain.NewTypeMismatch(pluginID, name)
		}
	}

	if err := validateChildren(schema, pluginID, w, def.Children); err != nil {
		return err
	}

	for _, child := range w.Children {
		if err := validateNode(schema, pluginID, child, seen, listeners); err != nil {
			return err
		}
	}
	return nil
}

func validateChildren(schema *Schema, pluginID domain.PluginID, w domain.Widget, spec ChildrenSpec) error {
	switch spec.Kind {
	case ChildrenNone:
		if len(w.Children) > 0 {
			return domain.NewUnexpectedChild(pluginID, w.WidgetType, w.Children[0].WidgetType)
		}
	case ChildrenString:
		if len(w.Children) > 0 {
			return domain.NewUnexpectedChild(pluginID, w.WidgetType, w.Children[0].WidgetType)
		}
	case ChildrenStringOrMembers:
		if w.TextContent != nil && len(w.Children) > 0 {
			return domain.NewUnexpectedChild(pluginID, w.WidgetType, "text")
		}
		if len(w.Children) > 0 {
			return validateMemberChildren(pluginID, w, spec)
		}
	case ChildrenMembers:
		return validateMemberChildren(pluginID, w, spec)
	}
	return nil
}

func validateMemberChildren(pluginID domain.PluginID, w domain.Widget, spec ChildrenSpec) error {
	if spec.Ordered {
		for _, child := range w.Children {
			if _, ok := spec.Members[child.WidgetType]; !ok {
				return domain.NewUnexpectedChild(pluginID, w.WidgetType, child.WidgetType)
			}
		}
		return nil
	}

	counts := make(map[string]int)
	for _, child := range w.Children {
		arity, ok := spec.PerType[child.WidgetType]
		if !ok {
			return domain.NewUnexpectedChild(pluginID, w.WidgetType, child.WidgetType)
		}
		counts[child.WidgetType]++
		if (arity == ArityZeroOrOne || arity == ArityExactlyOne) && counts[child.WidgetType] > 1 {
			return domain.NewSingletonViolation(pluginID, child.WidgetType)
		}
	}
	for childType, arity := range spec.PerType {
		if arity == ArityExactlyOne && counts[childType] == 0 {
			return domain.NewRequiredChildMissing(pluginID, w.WidgetType, childType)
		}
	}
	return nil
}

func matchesType(schema *Schema, t domain.PropertyType, v domain.PropertyValue) bool {
	switch t.Tag {
	case domain.PropertyTypeString:
		return v.Kind == domain.ValueString
	case domain.PropertyTypeNumber:
		return v.Kind == domain.ValueNumber
	case domain.PropertyTypeBoolean:
		return v.Kind == domain.ValueBool
	case domain.PropertyTypeImageData:
		return v.Kind == domain.ValueBytes
	case domain.PropertyTypeComponent:
		return v.Kind == domain.ValueComponent
	case domain.PropertyTypeEnum:
		if v.Kind != domain.ValueString {
			return false
		}
		for _, allowed := range t.EnumValues {
			if allowed == v.String {
				return true
			}
		}
		return false
	case domain.PropertyTypeArray:
		if v.Kind != domain.ValueArray {
			return false
		}
		if t.ArrayItem == nil {
			return true
		}
		for _, item := range v.Array {
			if !matchesType(schema, *t.ArrayItem, item) {
				return false
			}
		}
		return true
	case domain.PropertyTypeUnion:
		for _, branch := range t.UnionItems {
			if matchesType(schema, branch, v) {
				return true
			}
		}
		return false
	case domain.PropertyTypeSharedTypeRef:
		shared, ok := schema.SharedTypes[t.SharedTypeRef]
		if !ok {
			return false
		}
		return matchesSharedType(schema, shared, v)
	default:
		return false
	}
}

func matchesSharedType(schema *Schema, shared domain.SharedType, v domain.PropertyValue) bool {
	switch shared.Kind {
	case domain.SharedTypeEnum:
		if v.Kind != domain.ValueString {
			return false
		}
		for _, allowed := range shared.EnumValues {
			if allowed == v.String {
				return true
			}
		}
		return false
	case domain.SharedTypeUnion:
		for _, branch := range shared.UnionItems {
			if matchesType(schema, branch, v) {
				return true
			}
		}
		return false
	case domain.SharedTypeObject:
		if v.Kind != domain.ValueObject {
			return false
		}
		for name, fieldType := range shared.ObjectFields {
			fieldVal, ok := v.Object[name]
			if !ok {
				return false
			}
			if !matchesType(schema, fieldType, fieldVal) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
