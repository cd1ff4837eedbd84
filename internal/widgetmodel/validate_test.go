package widgetmodel

import (
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strVal(s string) domain.PropertyValue { return domain.PropertyValue{Kind: domain.ValueString, String: s} }
func numVal(n float64) domain.PropertyValue { return domain.PropertyValue{Kind: domain.ValueNumber, Number: n} }

func listItem(id uint32, itemID, title string) domain.Widget {
	return domain.Widget{
		WidgetID:   id,
		WidgetType: "ListItem",
		Properties: map[string]domain.PropertyValue{
			"id":    strVal(itemID),
			"title": strVal(title),
		},
	}
}

// P1: unique widget ids accepted; duplicate ids rejected.
func TestValidate_P1_UniqueWidgetIDs(t *testing.T) {
	schema := DefaultSchema()
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "List",
		Children: []domain.Widget{
			listItem(2, "a", "Alpha"),
			listItem(3, "b", "Beta"),
		},
	}
	_, err := Validate(schema, "bundled://tasks", tree)
	require.NoError(t, err)

	dup := domain.Widget{
		WidgetID:   1,
		WidgetType: "List",
		Children: []domain.Widget{
			listItem(2, "a", "Alpha"),
			listItem(2, "b", "Beta"),
		},
	}
	_, err = Validate(schema, "bundled://tasks", dup)
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeDuplicateWidgetID, domainErr.Code)
}

// P2: declared type succeeds, wrong primitive type fails with TypeMismatch
// naming the offending property.
func TestValidate_P2_SchemaConformance(t *testing.T) {
	schema := DefaultSchema()
	good := listItem(1, "a", "Alpha")
	_, err := Validate(schema, "bundled://tasks", good)
	require.NoError(t, err)

	bad := domain.Widget{
		WidgetID:   1,
		WidgetType: "ListItem",
		Properties: map[string]domain.PropertyValue{
			"id":    numVal(42), // wrong type: should be string
			"title": strVal("Alpha"),
		},
	}
	_, err = Validate(schema, "bundled://tasks", bad)
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeTypeMismatch, domainErr.Code)
}

func TestValidate_UnknownComponent(t *testing.T) {
	schema := DefaultSchema()
	_, err := Validate(schema, "bundled://tasks", domain.Widget{WidgetID: 1, WidgetType: "NoSuchThing"})
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeUnknownComponent, domainErr.Code)
}

func TestValidate_RequiredChildMissing(t *testing.T) {
	schema := DefaultSchema()
	tree := domain.Widget{WidgetID: 1, WidgetType: "Detail"} // missing required DetailContent
	_, err := Validate(schema, "bundled://tasks", tree)
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeRequiredChildMissing, domainErr.Code)
}

// S3: two singleton Metadata children under Detail is rejected.
func TestValidate_S3_SingletonViolation(t *testing.T) {
	schema := DefaultSchema()
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "Detail",
		Children: []domain.Widget{
			{WidgetID: 2, WidgetType: "DetailContent"},
			{WidgetID: 3, WidgetType: "Metadata"},
			{WidgetID: 4, WidgetType: "Metadata"},
		},
	}
	_, err := Validate(schema, "bundled://tasks", tree)
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeSingletonViolation, domainErr.Code)
}

func TestValidate_UnexpectedChild(t *testing.T) {
	schema := DefaultSchema()
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "Detail",
		Children: []domain.Widget{
			{WidgetID: 2, WidgetType: "DetailContent"},
			{WidgetID: 3, WidgetType: "ListItem", Properties: map[string]domain.PropertyValue{
				"id": strVal("x"), "title": strVal("y"),
			}},
		},
	}
	_, err := Validate(schema, "bundled://tasks", tree)
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeUnexpectedChild, domainErr.Code)
}

func TestValidate_FunctionPropertyRecordedAsListener(t *testing.T) {
	schema := DefaultSchema()
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "List",
		Properties: map[string]domain.PropertyValue{
			"onSelectionChange": {Kind: domain.ValueFunction},
		},
		Children: []domain.Widget{listItem(2, "a", "Alpha")},
	}
	validated, err := Validate(schema, "bundled://tasks", tree)
	require.NoError(t, err)
	_, ok := validated.Listeners[EventListenerKey{WidgetID: 1, Property: "onSelectionChange"}]
	assert.True(t, ok)
}
