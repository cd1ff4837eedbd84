// Package widgetmodel implements the widget tree schema, its validation
// against plugin-submitted trees, and the strict serialization format
// shared with the front-end's reconciler.
package widgetmodel

import "github.com/gauntlet-host/launcherd/internal/domain"

// ChildrenKind classifies what a component may hold as children.
type ChildrenKind string

const (
	ChildrenNone            ChildrenKind = "none"
	ChildrenString          ChildrenKind = "string"
	ChildrenMembers         ChildrenKind = "members"
	ChildrenStringOrMembers ChildrenKind = "string_or_members"
)

// Arity bounds how many of a per-type child slot may appear.
type Arity string

const (
	ArityZeroOrOne  Arity = "zero_or_one"
	ArityExactlyOne Arity = "exactly_one"
	ArityZeroOrMore Arity = "zero_or_more"
)

// ChildrenSpec describes the allowed children of one component.
type ChildrenSpec struct {
	Kind ChildrenKind
	// Ordered is true for sequence-preserving member children (e.g. List
	// items); false for per-type slots (e.g. Detail's single Metadata).
	Ordered bool
	// PerType lists, for Ordered == false, the allowed child component
	// types and how many of each may appear.
	PerType map[string]Arity
	// Members lists, for Ordered == true, the allowed child component types
	// (any arity, any order among themselves).
	Members map[string]struct{}
}

// ComponentDef is one schema entry: a widget_type's allowed properties and children.
type ComponentDef struct {
	Properties map[string]domain.PropertyType
	Required   map[string]struct{}
	Children   ChildrenSpec
}

// Schema is the closed, compiled component model consulted by the validator.
type Schema struct {
	Components map[string]ComponentDef
	SharedTypes map[string]domain.SharedType
}

// DefaultSchema returns the component model shipped with the host. It names
// a representative subset of the real component set (enough to exercise
// every validation rule): Detail, DetailContent, Metadata, MetadataLink,
// MetadataLabel, List, ListItem, ListSection, Text, and Image.
func DefaultSchema() *Schema {
	return &Schema{
		Components: map[string]ComponentDef{
			"Detail": {
				Properties: map[string]domain.PropertyType{
					"isLoading": {Tag: domain.PropertyTypeBoolean},
				},
				Children: ChildrenSpec{
					Kind:    ChildrenMembers,
					Ordered: false,
					PerType: map[string]Arity{
						"DetailContent":  ArityExactlyOne,
						"Metadata":       ArityZeroOrOne,
					},
				},
			},
			"DetailContent": {
				Children: ChildrenSpec{Kind: ChildrenString},
			},
			"Metadata": {
				Children: ChildrenSpec{
					Kind:    ChildrenMembers,
					Ordered: true,
					Members: map[string]struct{}{
						"MetadataLink":  {},
						"MetadataLabel": {},
					},
				},
			},
			"MetadataLink": {
				Properties: map[string]domain.PropertyType{
					"label":  {Tag: domain.PropertyTypeString},
					"href":   {Tag: domain.PropertyTypeString},
					"target": {Tag: domain.PropertyTypeString},
				},
				Required: map[string]struct{}{"label": {}, "href": {}},
			},
			"MetadataLabel": {
				Properties: map[string]domain.PropertyType{
					"label": {Tag: domain.PropertyTypeString},
					"text":  {Tag: domain.PropertyTypeString},
				},
				Required: map[string]struct{}{"label": {}, "text": {}},
			},
			"List": {
				Properties: map[string]domain.PropertyType{
					"onSelectionChange": {Tag: domain.PropertyTypeFunction, FunctionArgs: []string{"id"}},
				},
				Children: ChildrenSpec{
					Kind:    ChildrenMembers,
					Ordered: true,
					Members: map[string]struct{}{
						"ListItem":    {},
						"ListSection": {},
					},
				},
			},
			"ListSection": {
				Properties: map[string]domain.PropertyType{
					"title": {Tag: domain.PropertyTypeString},
				},
				Required: map[string]struct{}{"title": {}},
				Children: ChildrenSpec{
					Kind:    ChildrenMembers,
					Ordered: true,
					Members: map[string]struct{}{"ListItem": {}},
				},
			},
			"ListItem": {
				Properties: map[string]domain.PropertyType{
					"id":    {Tag: domain.PropertyTypeString},
					"title": {Tag: domain.PropertyTypeString},
					"icon":  {Tag: domain.PropertyTypeImageData},
				},
				Required: map[string]struct{}{"id": {}, "title": {}},
				Children: ChildrenSpec{Kind: ChildrenNone},
			},
			"Text": {
				Properties: map[string]domain.PropertyType{
					"element": {
						Tag:        domain.PropertyTypeEnum,
						EnumValues: []string{"h1", "h2", "h3", "p"},
					},
				},
				Children: ChildrenSpec{Kind: ChildrenString},
			},
			"Image": {
				Properties: map[string]domain.PropertyType{
					"source": {Tag: domain.PropertyTypeImageData},
				},
				Required: map[string]struct{}{"source": {}},
				Children: ChildrenSpec{Kind: ChildrenNone},
			},
		},
	}
}
