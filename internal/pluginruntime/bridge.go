package pluginruntime

import (
	"context"

	"github.com/dop251/goja"
)

// bridgeObject builds the op table exposed to plugin JS. moduleloader.go's
// bridgeModuleStub re-exports obj[specifier] as module.exports for every
// gauntlet:core, @project-gauntlet/api/*, and gauntlet:bridge/internal-*
// import; all of those specifiers share one underlying op table, grouped
// here by capability the way ops.go groups its methods.
func (r *Runtime) bridgeObject() *goja.Object {
	ops := r.vm.NewObject()

	// UI rendering.
	ops.Set("replaceView", r.wrapWidget(false))
	ops.Set("replaceInlineView", r.wrapWidget(true))
	ops.Set("clearInlineView", r.wrap1Void(func(entrypointID string) error { r.ops.CloseView(entrypointID); return nil }))

	// Schema introspection.
	ops.Set("componentModel", r.wrap0(func() (interface{}, error) { return r.ops.Schema(), nil }))

	// Preferences.
	ops.Set("getPluginPreferences", r.wrap0(func() (interface{}, error) { return r.ops.GetPluginPreferences(), nil }))
	ops.Set("getEntrypointPreferences", r.wrap1(func(entrypointID string) (interface{}, error) {
		return r.ops.GetEntrypointPreferences(entrypointID), nil
	}))
	ops.Set("pluginPreferencesRequired", r.wrap0(func() (interface{}, error) { return r.ops.PluginPreferencesRequired(), nil }))
	ops.Set("entrypointPreferencesRequired", r.wrap1(func(entrypointID string) (interface{}, error) {
		return r.ops.EntrypointPreferencesRequired(entrypointID), nil
	}))

	// Assets.
	ops.Set("assetData", r.wrap1(func(assetPath string) (interface{}, error) {
		return r.ops.AssetData(context.Background(), assetPath)
	}))

	// Clipboard.
	ops.Set("clipboardRead", r.wrap0(func() (interface{}, error) { return r.ops.ClipboardRead() }))
	ops.Set("clipboardReadText", r.wrap0(func() (interface{}, error) { return r.ops.ClipboardRead() }))
	ops.Set("clipboardWrite", r.wrap1(func(text string) (interface{}, error) { return nil, r.ops.ClipboardWrite(text) }))
	ops.Set("clipboardWriteText", r.wrap1(func(text string) (interface{}, error) { return nil, r.ops.ClipboardWrite(text) }))
	ops.Set("clipboardClear", r.wrap0(func() (interface{}, error) { return nil, r.ops.ClipboardClear() }))

	// Environment / system.
	ops.Set("getEnv", r.wrap1(func(name string) (interface{}, error) { return r.ops.GetEnv(name) }))
	ops.Set("runCommand", r.wrapStringArray(func(argv []string) (interface{}, error) {
		return r.ops.RunCommand(context.Background(), argv)
	}))
	ops.Set("fetchUrl", r.wrap2(func(url, hostPort string) (interface{}, error) {
		return r.ops.FetchURL(context.Background(), url, hostPort)
	}))

	// Search.
	ops.Set("reloadSearchIndex", r.wrap1Void(func(entrypointID string) error { r.ops.ReloadSearchIndex(entrypointID); return nil }))
	ops.Set("refreshSearchIndex", r.wrap1Void(func(entrypointID string) error { r.ops.RefreshSearchIndex(entrypointID); return nil }))

	// Entrypoint generation.
	ops.Set("getEntrypointGeneratorEntrypointIds", r.wrap0(func() (interface{}, error) {
		return r.ops.GetEntrypointGeneratorEntrypointIDs(), nil
	}))
	ops.Set("runGeneratedEntrypoint", r.wrap2Void(func(generatorEntrypointID, generatedID string) error {
		r.ops.RunGeneratedEntrypoint(generatorEntrypointID, generatedID)
		return nil
	}))

	obj := r.vm.NewObject()
	obj.Set("gauntlet:core", ops)
	obj.Set("@project-gauntlet/api/components", ops)
	obj.Set("@project-gauntlet/api/hooks", ops)
	obj.Set("@project-gauntlet/api/helpers", ops)
	obj.Set("gauntlet:bridge/internal-all", ops)
	obj.Set("gauntlet:bridge/internal-linux", ops)
	obj.Set("gauntlet:bridge/internal-macos", ops)
	obj.Set("gauntlet:bridge/internal-windows", ops)
	return obj
}

// wrapWidget binds replace_view/replace_inline_view: it takes the raw
// {type,props,children} tree a plugin's render() would also return, builds
// it the same way RenderEntrypointView does, hands the resulting listener
// table to onHandlers, and forwards the validated widget to Ops.
func (r *Runtime) wrapWidget(inline bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		entrypointID := call.Argument(0).String()
		builder := newWidgetBuilder()
		w, err := builder.build(call.Argument(1).Export())
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		if inline {
			err = r.ops.ReplaceInlineView(entrypointID, w)
		} else {
			err = r.ops.ReplaceView(entrypointID, w)
		}
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		if r.onHandlers != nil {
			r.onHandlers(entrypointID, builder.handlers)
		}
		return goja.Undefined()
	}
}

func (r *Runtime) wrap0(fn func() (interface{}, error)) func(goja.FunctionCall) goja.Value {
	return func(goja.FunctionCall) goja.Value {
		v, err := fn()
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return r.vm.ToValue(v)
	}
}

func (r *Runtime) wrap1(fn func(string) (interface{}, error)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		v, err := fn(call.Argument(0).String())
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return r.vm.ToValue(v)
	}
}

func (r *Runtime) wrap2(fn func(string, string) (interface{}, error)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		v, err := fn(call.Argument(0).String(), call.Argument(1).String())
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return r.vm.ToValue(v)
	}
}

func (r *Runtime) wrap1Void(fn func(string) error) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := fn(call.Argument(0).String()); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return goja.Undefined()
	}
}

func (r *Runtime) wrap2Void(fn func(string, string) error) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := fn(call.Argument(0).String(), call.Argument(1).String()); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return goja.Undefined()
	}
}

// wrapStringArray binds an op whose sole argument is a JS array of strings,
// e.g. run_command's argv.
func (r *Runtime) wrapStringArray(fn func([]string) (interface{}, error)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		raw, _ := call.Argument(0).Export().([]interface{})
		argv := make([]string, 0, len(raw))
		for _, item := range raw {
			s, _ := item.(string)
			argv = append(argv, s)
		}
		v, err := fn(argv)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return r.vm.ToValue(v)
	}
}
