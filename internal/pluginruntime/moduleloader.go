// Copyright 2025 James Ross

// Package pluginruntime hosts one goja JavaScript runtime per loaded plugin:
// module resolution, permission-gated host ops, and the event stream that
// drives UI and command entrypoints.
package pluginruntime

import (
	"path"
	"strings"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// ModuleKind tags where a resolved module's source comes from.
type ModuleKind string

const (
	ModuleInit       ModuleKind = "init"       // the plugin's top-level init script
	ModuleEntrypoint ModuleKind = "entrypoint" // one entrypoint's source
	ModuleUser       ModuleKind = "user"       // a plugin-authored helper module
	ModuleBuiltin    ModuleKind = "builtin"    // a bridge/runtime-provided module
)

// ResolvedModule identifies where ModuleLoader.Load should fetch source from.
type ResolvedModule struct {
	Kind ModuleKind
	ID   string
}

var builtinSpecifiers = map[string]struct{}{
	"react":              {},
	"react/jsx-runtime":  {},
	"gauntlet:core":      {},
}

func isProjectGauntletAPI(specifier string) bool {
	return strings.HasPrefix(specifier, "@project-gauntlet/api/")
}

func isInternalBridge(specifier string) bool {
	return strings.HasPrefix(specifier, "gauntlet:bridge/internal-")
}

// ResolveModule maps an import specifier, seen while evaluating fromModuleID,
// to the module that should satisfy it. Unrecognized specifiers fail closed
// with an IllegalImport error rather than falling through to Node-style
// node_modules resolution, which this host does not support.
func ResolveModule(pluginID domain.PluginID, fromModuleID, specifier string) (ResolvedModule, error) {
	switch {
	case specifier == "gauntlet:init":
		return ResolvedModule{Kind: ModuleInit}, nil

	case strings.HasPrefix(specifier, "gauntlet:entrypoint?"):
		id := strings.TrimPrefix(specifier, "gauntlet:entrypoint?")
		if id == "" {
			return ResolvedModule{}, domain.NewIllegalImport(pluginID, specifier)
		}
		return ResolvedModule{Kind: ModuleEntrypoint, ID: id}, nil

	case strings.HasPrefix(specifier, "gauntlet:module?"):
		id := strings.TrimPrefix(specifier, "gauntlet:module?")
		if id == "" {
			return ResolvedModule{}, domain.NewIllegalImport(pluginID, specifier)
		}
		return ResolvedModule{Kind: ModuleUser, ID: id}, nil

	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return ResolvedModule{Kind: ModuleUser, ID: resolveRelative(fromModuleID, specifier)}, nil

	case isProjectGauntletAPI(specifier), isInternalBridge(specifier):
		return ResolvedModule{Kind: ModuleBuiltin, ID: specifier}, nil
	}

	if _, ok := builtinSpecifiers[specifier]; ok {
		return ResolvedModule{Kind: ModuleBuiltin, ID: specifier}, nil
	}
	return ResolvedModule{}, domain.NewIllegalImport(pluginID, specifier)
}

// resolveRelative joins a relative specifier against the directory of the
// importing module, the way Node's CommonJS resolver treats module ids as
// slash-separated virtual paths. A trailing ".js" is dropped, since module
// ids are stored without it.
func resolveRelative(fromModuleID, specifier string) string {
	dir := path.Dir(fromModuleID)
	if dir == "." {
		dir = ""
	}
	return strings.TrimSuffix(path.Clean(path.Join(dir, specifier)), ".js")
}

// Loader fetches source text for a resolved module out of a plugin's code.
type Loader struct {
	code domain.PluginCode
}

func NewLoader(code domain.PluginCode) *Loader {
	return &Loader{code: code}
}

// Load returns the source text for a resolved module, or an IllegalImport
// error if the referenced entrypoint/module id doesn't exist in the
// plugin's code map.
func (l *Loader) Load(pluginID domain.PluginID, m ResolvedModule) (string, error) {
	switch m.Kind {
	case ModuleInit:
		return l.code.InitJS, nil
	case ModuleEntrypoint:
		src, ok := l.code.EntrypointSources[m.ID]
		if !ok {
			return "", domain.NewIllegalImport(pluginID, "gauntlet:entrypoint?"+m.ID)
		}
		return src, nil
	case ModuleUser:
		src, ok := l.code.ModuleSources[m.ID]
		if !ok {
			return "", domain.NewIllegalImport(pluginID, "gauntlet:module?"+m.ID)
		}
		return src, nil
	case ModuleBuiltin:
		src, ok := builtinModuleSource[m.ID]
		if ok {
			return src, nil
		}
		if isProjectGauntletAPI(m.ID) || isInternalBridge(m.ID) {
			return bridgeModuleStub(m.ID), nil
		}
		return "", domain.NewIllegalImport(pluginID, m.ID)
	default:
		return "", domain.NewIllegalImport(pluginID, m.ID)
	}
}

// builtinModuleSource holds the fixed source for every built-in specifier.
// gauntlet:core and the bridge/API modules all re-export a slot on the
// __gauntlet_ops global that runtime.go installs before any module runs.
var builtinModuleSource = map[string]string{
	"react":             reactShimSource,
	"react/jsx-runtime": reactJSXRuntimeShimSource,
	"gauntlet:core":     bridgeModuleStub("gauntlet:core"),
}

// bridgeModuleStub generates the re-export shim for one @project-gauntlet/api
// or gauntlet:bridge/internal-* module; the real bindings are installed on
// the global `__gauntlet_ops` object by the runtime before this module runs.
func bridgeModuleStub(specifier string) string {
	return "module.exports = __gauntlet_ops[" + quoteJS(specifier) + "] || {};"
}

func quoteJS(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

const reactShimSource = `
// Minimal createElement-based shim: entrypoints build a widget tree by
// calling React.createElement; no reconciliation happens host-side.
function createElement(type, props) {
	var children = Array.prototype.slice.call(arguments, 2);
	return { type: type, props: props || {}, children: children };
}
module.exports = { createElement: createElement };
`

const reactJSXRuntimeShimSource = `
var React = require("react");
function jsx(type, props) {
	var children = props && props.children ? [].concat(props.children) : [];
	return React.createElement.apply(null, [type, props].concat(children));
}
module.exports = { jsx: jsx, jsxs: jsx };
`
