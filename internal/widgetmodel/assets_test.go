package widgetmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssetStore struct {
	data map[string][]byte
}

func (f *fakeAssetStore) AssetData(ctx context.Context, pluginID domain.PluginID, path string) ([]byte, error) {
	b, ok := f.data[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

// S5: asset round-trip — a plugin's own asset store resolves its declared path.
func TestGatherBinaryData_S5_AssetRoundTrip(t *testing.T) {
	store := &fakeAssetStore{data: map[string][]byte{"icon.png": make([]byte, 128)}}
	widget := domain.Widget{
		WidgetID:   1,
		WidgetType: "Image",
		Properties: map[string]domain.PropertyValue{
			"source": {Kind: domain.ValueBytes},
		},
	}
	sources := map[EventListenerKey]AssetSource{
		{WidgetID: 1, Property: "source"}: {Kind: AssetSourceAsset, Path: "icon.png"},
	}
	err := GatherBinaryData(context.Background(), "bundled://a", store, sources, &widget)
	require.NoError(t, err)
	assert.Len(t, widget.Properties["source"].Bytes, 128)
}

func TestGatherBinaryData_MissingAssetFails(t *testing.T) {
	store := &fakeAssetStore{data: map[string][]byte{}}
	widget := domain.Widget{
		WidgetID:   1,
		WidgetType: "Image",
		Properties: map[string]domain.PropertyValue{
			"source": {Kind: domain.ValueBytes},
		},
	}
	sources := map[EventListenerKey]AssetSource{
		{WidgetID: 1, Property: "source"}: {Kind: AssetSourceAsset, Path: "missing.png"},
	}
	err := GatherBinaryData(context.Background(), "bundled://a", store, sources, &widget)
	assert.Error(t, err)
}
