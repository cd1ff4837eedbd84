package appmanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// DiskAssetStore resolves a plugin's ImageData asset references against its
// installed bundle on disk, the same dataDir/installed/<id>/plugins/v<N>/
// layout installBundle writes and loadInstalledCode reads back.
type DiskAssetStore struct {
	dataDir string
}

// NewDiskAssetStore constructs a DiskAssetStore rooted at the same dataDir
// passed to New, so its asset lookups always match the currently installed
// bundle version.
func NewDiskAssetStore(dataDir string) *DiskAssetStore {
	return &DiskAssetStore{dataDir: dataDir}
}

// AssetData reads pluginID's highest installed bundle version's assets/path
// file. It re-globs the version directory on every call rather than caching
// it, so an in-place plugin upgrade is picked up without a restart.
func (s *DiskAssetStore) AssetData(ctx context.Context, pluginID domain.PluginID, path string) ([]byte, error) {
	pluginsDir := filepath.Join(s.dataDir, "installed", sanitizeInstallDirName(pluginID), "plugins")
	versionDir, err := highestAssetVersionDir(pluginsDir)
	if err != nil {
		return nil, fmt.Errorf("asset store: %s: %w", pluginID, err)
	}
	full := filepath.Join(versionDir, "assets", filepath.Clean("/"+path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("asset store: %s %q: %w", pluginID, path, err)
	}
	return data, nil
}

func highestAssetVersionDir(pluginsDir string) (string, error) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return "", err
	}
	best := -1
	var bestName string
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "v") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "v"))
		if err != nil {
			continue
		}
		if n > best {
			best = n
			bestName = e.Name()
		}
	}
	if best < 0 {
		return "", fmt.Errorf("no plugins/v<N> directory under %s", pluginsDir)
	}
	return filepath.Join(pluginsDir, bestName), nil
}
