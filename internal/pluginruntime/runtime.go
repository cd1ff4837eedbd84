package pluginruntime

import (
	"context"
	"fmt"
	goruntime "runtime"
	"time"

	"github.com/dop251/goja"
	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
	"go.uber.org/zap"
)

// Runtime is one plugin's isolated goja VM, driven by a single goroutine
// (goja values aren't safe to touch from other goroutines) pinned to its OS
// thread so a runaway script's CPU use stays attributable to one plugin.
type Runtime struct {
	pluginID domain.PluginID
	vm       *goja.Runtime
	loader   *Loader
	ops      *Ops
	limits   Limits
	logger   *zap.Logger

	cache map[string]goja.Value

	calls  chan call
	cancel context.CancelFunc
	done   chan struct{}

	// onHandlers receives the listener table captured whenever plugin JS
	// calls replace_view/replace_inline_view directly through the bridge,
	// mirroring what RenderEntrypointView's caller does after CallEntrypoint.
	onHandlers func(entrypointID string, handlers map[widgetmodel.EventListenerKey]widgetmodel.Handler)
}

// SetHandlerSink registers the callback bridge.go's replace-view bindings use
// to hand off newly captured function-valued widget listeners to the host.
func (r *Runtime) SetHandlerSink(fn func(entrypointID string, handlers map[widgetmodel.EventListenerKey]widgetmodel.Handler)) {
	r.onHandlers = fn
}

type call struct {
	fn     func() (interface{}, error)
	result chan<- callResult
}

type callResult struct {
	value interface{}
	err   error
}

// New starts a plugin's runtime goroutine and evaluates its init module.
func New(pluginID domain.PluginID, code domain.PluginCode, ops *Ops, limits Limits, logger *zap.Logger) (*Runtime, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		pluginID: pluginID,
		loader:   NewLoader(code),
		ops:      ops,
		limits:   limits,
		logger:   logger,
		cache:    make(map[string]goja.Value),
		calls:    make(chan call),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	ready := make(chan error, 1)
	go r.loop(ctx, ready)
	if err := <-ready; err != nil {
		cancel()
		return nil, err
	}
	return r, nil
}

func (r *Runtime) loop(ctx context.Context, ready chan<- error) {
	defer close(r.done)

	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	r.vm = goja.New()
	r.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if err := r.bindGlobals(); err != nil {
		ready <- err
		return
	}
	if _, err := r.requireModule("", "gauntlet:init"); err != nil {
		ready <- err
		return
	}
	ready <- nil

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-r.calls:
			v, err := c.fn()
			c.result <- callResult{value: v, err: err}
		}
	}
}

// run executes fn on the runtime's own goroutine, enforcing the configured
// execution timeout via goja's cooperative interrupt mechanism.
func (r *Runtime) run(fn func() (interface{}, error)) (interface{}, error) {
	resultCh := make(chan callResult, 1)
	timer := time.AfterFunc(time.Duration(r.limits.MaxExecutionMs)*time.Millisecond, func() {
		r.vm.Interrupt("pluginruntime: execution timeout exceeded")
	})
	defer timer.Stop()

	select {
	case r.calls <- call{fn: fn, result: resultCh}:
	case <-r.done:
		return nil, fmt.Errorf("pluginruntime: %s runtime stopped", r.pluginID)
	}

	res := <-resultCh
	return res.value, res.err
}

// Close stops the runtime goroutine and releases its VM.
func (r *Runtime) Close() {
	r.cancel()
	<-r.done
}

func (r *Runtime) bindGlobals() error {
	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		lvl := level
		console.Set(level, func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, 0, len(call.Arguments))
			for _, a := range call.Arguments {
				args = append(args, a.Export())
			}
			logConsole(r.logger, r.pluginID, lvl, args)
			return goja.Undefined()
		})
	}
	if err := r.vm.Set("console", console); err != nil {
		return err
	}
	if err := r.vm.Set("__gauntlet_ops", r.bridgeObject()); err != nil {
		return err
	}
	return nil
}

func logConsole(logger *zap.Logger, pluginID domain.PluginID, level string, args []interface{}) {
	fields := []zap.Field{zap.String("plugin_id", string(pluginID)), zap.Any("args", args)}
	switch level {
	case "warn":
		logger.Warn("plugin console", fields...)
	case "error":
		logger.Error("plugin console", fields...)
	case "debug":
		logger.Debug("plugin console", fields...)
	default:
		logger.Info("plugin console", fields...)
	}
}

// requireModule implements CommonJS-style module loading: compile the
// module source wrapped as a (module, exports, require) function, run it
// once, and cache its exports by resolved module identity.
func (r *Runtime) requireModule(fromModuleID, specifier string) (goja.Value, error) {
	resolved, err := ResolveModule(r.pluginID, fromModuleID, specifier)
	if err != nil {
		return nil, err
	}
	cacheKey := string(resolved.Kind) + ":" + resolved.ID

	if v, ok := r.cache[cacheKey]; ok {
		return v, nil
	}

	src, err := r.loader.Load(r.pluginID, resolved)
	if err != nil {
		return nil, err
	}

	prg, err := goja.Compile(cacheKey, "(function(module, exports, require) {\n"+src+"\n})", true)
	if err != nil {
		return nil, domain.NewConfigError("module_compile", fmt.Sprintf("plugin %s module %s failed to compile", r.pluginID, cacheKey), err)
	}
	fnVal, err := r.vm.RunProgram(prg)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, fmt.Errorf("pluginruntime: module wrapper for %s is not callable", cacheKey)
	}

	moduleObj := r.vm.NewObject()
	exportsObj := r.vm.NewObject()
	moduleObj.Set("exports", exportsObj)

	moduleID := resolved.ID
	if resolved.Kind == ModuleInit {
		moduleID = "init"
	}
	requireFn := func(innerCall goja.FunctionCall) goja.Value {
		spec := innerCall.Argument(0).String()
		v, err := r.requireModule(moduleID, spec)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return v
	}

	if _, err := fn(goja.Undefined(), moduleObj, exportsObj, r.vm.ToValue(requireFn)); err != nil {
		return nil, err
	}

	exportsVal := moduleObj.Get("exports")
	r.cache[cacheKey] = exportsVal
	return exportsVal, nil
}

// CallEntrypoint loads and invokes one entrypoint's default-exported
// function (a command's run(), or a view's render()).
func (r *Runtime) CallEntrypoint(entrypointID string) (interface{}, error) {
	return r.run(func() (interface{}, error) {
		exports, err := r.requireModule("init", "gauntlet:entrypoint?"+entrypointID)
		if err != nil {
			return nil, err
		}
		obj := exports.ToObject(r.vm)
		defaultExport := obj.Get("default")
		if defaultExport == nil || goja.IsUndefined(defaultExport) {
			return nil, fmt.Errorf("pluginruntime: entrypoint %s has no default export", entrypointID)
		}
		fn, ok := goja.AssertFunction(defaultExport)
		if !ok {
			return nil, fmt.Errorf("pluginruntime: entrypoint %s default export is not callable", entrypointID)
		}
		result, err := fn(goja.Undefined())
		if err != nil {
			return nil, err
		}
		return result.Export(), nil
	})
}

// RunGeneratedEntrypoint re-invokes a generator entrypoint's default export
// to obtain its current list of generated items, finds the one matching
// generatedID, and calls its "run" property. The generator's default export
// is expected to return an array of objects shaped like
// {entrypoint_id, name, actions, run}, where run is the callback to invoke
// when the generated entry is activated.
func (r *Runtime) RunGeneratedEntrypoint(generatorEntrypointID, generatedID string) (interface{}, error) {
	return r.run(func() (interface{}, error) {
		exports, err := r.requireModule("init", "gauntlet:entrypoint?"+generatorEntrypointID)
		if err != nil {
			return nil, err
		}
		obj := exports.ToObject(r.vm)
		defaultExport := obj.Get("default")
		if defaultExport == nil || goja.IsUndefined(defaultExport) {
			return nil, fmt.Errorf("pluginruntime: entrypoint %s has no default export", generatorEntrypointID)
		}
		fn, ok := goja.AssertFunction(defaultExport)
		if !ok {
			return nil, fmt.Errorf("pluginruntime: entrypoint %s default export is not callable", generatorEntrypointID)
		}
		result, err := fn(goja.Undefined())
		if err != nil {
			return nil, err
		}
		items, ok := result.Export().([]interface{})
		if !ok {
			return nil, fmt.Errorf("pluginruntime: generator entrypoint %s did not return a list of generated entrypoints", generatorEntrypointID)
		}
		for _, raw := range items {
			item, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			id, _ := item["entrypoint_id"].(string)
			if id == "" {
				id, _ = item["id"].(string)
			}
			if id != generatedID {
				continue
			}
			runVal, ok := item["run"]
			if !ok || runVal == nil {
				return nil, fmt.Errorf("pluginruntime: generated entrypoint %s has no run callback", generatedID)
			}
			runFn, ok := goja.AssertFunction(r.vm.ToValue(runVal))
			if !ok {
				return nil, fmt.Errorf("pluginruntime: generated entrypoint %s run property is not callable", generatedID)
			}
			out, err := runFn(goja.Undefined())
			if err != nil {
				return nil, err
			}
			return out.Export(), nil
		}
		return nil, fmt.Errorf("pluginruntime: generator %s produced no entrypoint with id %s", generatorEntrypointID, generatedID)
	})
}

// RenderEntrypointView renders a view entrypoint and converts the resulting
// tree into a validated domain.Widget plus its function-property listeners.
func (r *Runtime) RenderEntrypointView(entrypointID string) (domain.Widget, map[widgetmodel.EventListenerKey]widgetmodel.Handler, error) {
	v, err := r.CallEntrypoint(entrypointID)
	if err != nil {
		return domain.Widget{}, nil, err
	}
	builder := newWidgetBuilder()
	w, err := builder.build(v)
	if err != nil {
		return domain.Widget{}, nil, err
	}
	if _, err := widgetmodel.Validate(r.ops.Schema(), r.pluginID, w); err != nil {
		return domain.Widget{}, nil, err
	}
	return w, builder.handlers, nil
}

// InvokeHandler calls back into a function-valued widget property recorded
// by a prior RenderEntrypointView, on the runtime's own goroutine. The
// handler's underlying type is whatever goja.Value.Export() produced for a
// JS function, which this package treats as opaque and calls via
// goja.AssertFunction rather than a hand-assumed Go signature.
func (r *Runtime) InvokeHandler(h widgetmodel.Handler, args []domain.PropertyValue) (v interface{}, callErr error) {
	res, err := r.run(func() (result interface{}, fnErr error) {
		defer func() {
			if rec := recover(); rec != nil {
				fnErr = fmt.Errorf("pluginruntime: handler panicked: %v", rec)
			}
		}()
		fn, ok := goja.AssertFunction(r.vm.ToValue(h))
		if !ok {
			return nil, fmt.Errorf("pluginruntime: stored handler is not callable")
		}
		jsArgs := make([]goja.Value, len(args))
		for i, a := range args {
			jsArgs[i] = r.vm.ToValue(propertyValueToGo(a))
		}
		out, err := fn(goja.Undefined(), jsArgs...)
		if err != nil {
			return nil, err
		}
		return out.Export(), nil
	})
	return res, err
}

