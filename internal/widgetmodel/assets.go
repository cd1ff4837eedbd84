package widgetmodel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// AssetSource tags where an ImageData property's bytes should come from
// when the plugin sent a reference instead of inline bytes.
type AssetSource struct {
	Kind  AssetSourceKind
	Path  string // Kind == Asset: path into the plugin's asset store
	URL   string // Kind == URL
}

type AssetSourceKind string

const (
	AssetSourceInline AssetSourceKind = "inline"
	AssetSourceAsset  AssetSourceKind = "asset"
	AssetSourceURL    AssetSourceKind = "url"
)

// AssetStore resolves a plugin's bundled asset blobs by path.
type AssetStore interface {
	AssetData(ctx context.Context, pluginID domain.PluginID, path string) ([]byte, error)
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// GatherBinaryData walks a validated tree and resolves every ImageData
// property that referenced an asset-store path or a URL into inline bytes,
// mutating the tree in place. URL sources are fetched with a blocking GET;
// asset sources are fetched from the plugin's asset store.
func GatherBinaryData(ctx context.Context, pluginID domain.PluginID, store AssetStore, sources map[EventListenerKey]AssetSource, w *domain.Widget) error {
	for key, src := range sources {
		if key.WidgetID != w.WidgetID {
			continue
		}
		val, ok := w.Properties[key.Property]
		if !ok || val.Kind != domain.ValueBytes {
			continue
		}
		switch src.Kind {
		case AssetSourceAsset:
			data, err := store.AssetData(ctx, pluginID, src.Path)
			if err != nil {
				return fmt.Errorf("asset %q: %w", src.Path, err)
			}
			val.Bytes = data
		case AssetSourceURL:
			data, err := fetchURL(ctx, src.URL)
			if err != nil {
				return fmt.Errorf("url %q: %w", src.URL, err)
			}
			val.Bytes = data
		}
		w.Properties[key.Property] = val
	}
	for i := range w.Children {
		if err := GatherBinaryData(ctx, pluginID, store, sources, &w.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
