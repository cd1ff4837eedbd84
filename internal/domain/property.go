package domain

// PropertyTypeTag is the closed set of property type tags the component
// schema can declare for a widget property.
type PropertyTypeTag string

const (
	PropertyTypeString        PropertyTypeTag = "string"
	PropertyTypeNumber        PropertyTypeTag = "number"
	PropertyTypeBoolean       PropertyTypeTag = "boolean"
	PropertyTypeComponent     PropertyTypeTag = "component"
	PropertyTypeFunction      PropertyTypeTag = "function"
	PropertyTypeImageData     PropertyTypeTag = "image_data"
	PropertyTypeEnum          PropertyTypeTag = "enum"
	PropertyTypeUnion         PropertyTypeTag = "union"
	PropertyTypeArray         PropertyTypeTag = "array"
	PropertyTypeSharedTypeRef PropertyTypeTag = "shared_type_ref"
)

// PropertyType is the declared (schema-side) type of a component property.
// Exactly one field besides Tag is meaningful, chosen by Tag.
type PropertyType struct {
	Tag PropertyTypeTag

	ComponentRef  string         // Tag == Component
	FunctionArgs  []string       // Tag == Function, names of the callback's positional args
	EnumValues    []string       // Tag == Enum
	UnionItems    []PropertyType // Tag == Union
	ArrayItem     *PropertyType  // Tag == Array
	SharedTypeRef string         // Tag == SharedTypeRef, name into the shared-type table
}

// PropertyValueKind is the closed set of runtime value tags crossing the JS
// boundary, both for widget properties and for HandleViewEvent arguments.
type PropertyValueKind string

const (
	ValueString    PropertyValueKind = "string"
	ValueNumber    PropertyValueKind = "number"
	ValueBool      PropertyValueKind = "bool"
	ValueUndefined PropertyValueKind = "undefined"
	ValueBytes     PropertyValueKind = "bytes"
	ValueObject    PropertyValueKind = "object"
	ValueArray     PropertyValueKind = "array"
	ValueComponent PropertyValueKind = "component" // a nested Widget, for Component-typed properties
	ValueFunction  PropertyValueKind = "function"  // stripped on serialize, recorded in the event-listener table
)

// PropertyValue is the tagged runtime value of one widget property or one
// HandleViewEvent argument. Exactly one field besides Kind is meaningful.
type PropertyValue struct {
	Kind PropertyValueKind

	String    string
	Number    float64
	Bool      bool
	Bytes     []byte
	Object    map[string]PropertyValue
	Array     []PropertyValue
	Component *Widget
}

// SharedTypeKind is the closed set of shared-type forms referenced by SharedTypeRef.
type SharedTypeKind string

const (
	SharedTypeEnum   SharedTypeKind = "enum"
	SharedTypeObject SharedTypeKind = "object"
	SharedTypeUnion  SharedTypeKind = "union"
)

// SharedType is one named entry in the schema's shared-type table.
type SharedType struct {
	Kind        SharedTypeKind
	EnumValues  []string                // Kind == Enum
	ObjectFields map[string]PropertyType // Kind == Object
	UnionItems  []PropertyType          // Kind == Union
}
