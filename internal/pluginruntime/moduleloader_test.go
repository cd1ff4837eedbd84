package pluginruntime

import (
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPluginID domain.PluginID = "com.example.test"

func TestResolveModule_GauntletInit(t *testing.T) {
	m, err := ResolveModule(testPluginID, "", "gauntlet:init")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleInit}, m)
}

func TestResolveModule_Entrypoint(t *testing.T) {
	m, err := ResolveModule(testPluginID, "init", "gauntlet:entrypoint?search-view")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleEntrypoint, ID: "search-view"}, m)
}

func TestResolveModule_EntrypointEmptyIDRejected(t *testing.T) {
	_, err := ResolveModule(testPluginID, "init", "gauntlet:entrypoint?")
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeIllegalImport, domainErr.Code)
}

func TestResolveModule_RelativeImportFromNestedModule(t *testing.T) {
	m, err := ResolveModule(testPluginID, "lib/widgets/button", "../util")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleUser, ID: "lib/util"}, m)
}

func TestResolveModule_RelativeImportFromTopLevel(t *testing.T) {
	m, err := ResolveModule(testPluginID, "init", "./helpers")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleUser, ID: "helpers"}, m)
}

func TestResolveModule_BuiltinReact(t *testing.T) {
	m, err := ResolveModule(testPluginID, "init", "react")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleBuiltin, ID: "react"}, m)
}

func TestResolveModule_ProjectGauntletAPI(t *testing.T) {
	m, err := ResolveModule(testPluginID, "init", "@project-gauntlet/api/clipboard")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleBuiltin, ID: "@project-gauntlet/api/clipboard"}, m)
}

func TestResolveModule_InternalBridge(t *testing.T) {
	m, err := ResolveModule(testPluginID, "init", "gauntlet:bridge/internal-linux")
	require.NoError(t, err)
	assert.Equal(t, ResolvedModule{Kind: ModuleBuiltin, ID: "gauntlet:bridge/internal-linux"}, m)
}

// Every import specifier this host doesn't recognize fails closed rather
// than falling through to any form of filesystem or node_modules lookup.
func TestResolveModule_UnknownSpecifierFailsClosed(t *testing.T) {
	_, err := ResolveModule(testPluginID, "init", "left-pad")
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrorCodeIllegalImport, domainErr.Code)
}

func TestLoader_LoadInit(t *testing.T) {
	l := NewLoader(domain.PluginCode{InitJS: "module.exports = {}"})
	src, err := l.Load(testPluginID, ResolvedModule{Kind: ModuleInit})
	require.NoError(t, err)
	assert.Equal(t, "module.exports = {}", src)
}

func TestLoader_LoadEntrypointMissing(t *testing.T) {
	l := NewLoader(domain.PluginCode{EntrypointSources: map[string]string{}})
	_, err := l.Load(testPluginID, ResolvedModule{Kind: ModuleEntrypoint, ID: "missing"})
	require.Error(t, err)
}

func TestLoader_LoadUserModule(t *testing.T) {
	l := NewLoader(domain.PluginCode{ModuleSources: map[string]string{"lib/util": "module.exports.x = 1"}})
	src, err := l.Load(testPluginID, ResolvedModule{Kind: ModuleUser, ID: "lib/util"})
	require.NoError(t, err)
	assert.Equal(t, "module.exports.x = 1", src)
}

func TestLoader_LoadBuiltinReact(t *testing.T) {
	l := NewLoader(domain.PluginCode{})
	src, err := l.Load(testPluginID, ResolvedModule{Kind: ModuleBuiltin, ID: "react"})
	require.NoError(t, err)
	assert.Contains(t, src, "createElement")
}

func TestLoader_LoadBridgeStubReExportsOpsSlot(t *testing.T) {
	l := NewLoader(domain.PluginCode{})
	src, err := l.Load(testPluginID, ResolvedModule{Kind: ModuleBuiltin, ID: "@project-gauntlet/api/clipboard"})
	require.NoError(t, err)
	assert.Contains(t, src, `__gauntlet_ops["@project-gauntlet/api/clipboard"]`)
}
