package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for range rules.
// Single-goroutine access only (frame loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	warned map[string]bool
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Missing directories are skipped, leaving the Go fallbacks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, warned: make(map[string]bool)}

	for _, sub := range []string{"core", "range"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HitContext holds pre-packed data for scoring one target hit.
type HitContext struct {
	Distance     float32 // muzzle to impact
	Offset       float32 // target centre to impact
	TargetRadius float32
}

// CalcHitScore calls the Lua calc_hit_score function. Without the script,
// or when it fails, every hit is worth one point.
func (e *Engine) CalcHitScore(ctx HitContext) int {
	const name = "calc_hit_score"
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.missing(name)
		return 1
	}

	t := e.vm.NewTable()
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("offset", lua.LNumber(ctx.Offset))
	t.RawSetString("target_radius", lua.LNumber(ctx.TargetRadius))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_hit_score error", zap.Error(err))
		return 1
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_hit_score returned non-number", zap.String("type", result.Type().String()))
		return 1
	}
	return int(n)
}

// HitScore adapts CalcHitScore to the world's scorer interface.
func (e *Engine) HitScore(distance, offset, radius float32) int {
	return e.CalcHitScore(HitContext{Distance: distance, Offset: offset, TargetRadius: radius})
}

// missing logs an absent Lua function once.
func (e *Engine) missing(name string) {
	if e.warned[name] {
		return
	}
	e.warned[name] = true
	e.log.Warn("lua function not found, using fallback", zap.String("name", name))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
