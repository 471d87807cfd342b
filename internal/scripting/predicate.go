package scripting

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"
)

// Compile parses and compiles src as a Lua chunk.
//
// Postcondition: Returns a non-nil proto or a syntax error.
func Compile(src string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(src), "<predicate>")
	if err != nil {
		return nil, fmt.Errorf("scripting: parsing predicate: %w", err)
	}
	proto, err := lua.Compile(chunk, "<predicate>")
	if err != nil {
		return nil, fmt.Errorf("scripting: compiling predicate: %w", err)
	}
	return proto, nil
}

// Predicates evaluates boolean Lua chunks. Compiled chunks are cached by
// source text.
//
// Predicates is safe for concurrent use; each evaluation runs in its own
// sandboxed VM.
type Predicates struct {
	mu        sync.Mutex
	protos    map[string]*lua.FunctionProto
	instLimit int
	logger    *zap.Logger
}

// NewPredicates returns a Predicates evaluator.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
func NewPredicates(instLimit int, logger *zap.Logger) *Predicates {
	if logger == nil {
		panic("scripting.NewPredicates: precondition violated: logger must be non-nil")
	}
	return &Predicates{
		protos:    make(map[string]*lua.FunctionProto),
		instLimit: instLimit,
		logger:    logger,
	}
}

func (p *Predicates) proto(src string) (*lua.FunctionProto, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if proto, ok := p.protos[src]; ok {
		return proto, nil
	}
	proto, err := Compile(src)
	if err != nil {
		return nil, err
	}
	p.protos[src] = proto
	return proto, nil
}

// Eval runs src with globals bound and reports whether it returned a truthy
// value. Supported global values are bool, int, string, []string,
// map[string]int, map[string]bool, map[string]string and map[string]any
// (nested).
//
// Postcondition: a runtime error or exceeded instruction limit returns (false, err).
func (p *Predicates) Eval(src string, globals map[string]any) (bool, error) {
	proto, err := p.proto(src)
	if err != nil {
		return false, err
	}
	L, cancel := NewSandboxedState(p.instLimit)
	defer L.Close()
	defer cancel()

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		L.SetGlobal(name, toLua(L, globals[name]))
	}

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		p.logger.Warn("scripting: Lua runtime error", zap.Error(err))
		return false, fmt.Errorf("scripting: evaluating predicate: %w", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []string:
		t := L.NewTable()
		for _, s := range v {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]int:
		t := L.NewTable()
		for k, n := range v {
			t.RawSetString(k, lua.LNumber(n))
		}
		return t
	case map[string]bool:
		t := L.NewTable()
		for k, b := range v {
			t.RawSetString(k, lua.LBool(b))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, s := range v {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, inner := range v {
			t.RawSetString(k, toLua(L, inner))
		}
		return t
	}
	return lua.LString(fmt.Sprint(v))
}
