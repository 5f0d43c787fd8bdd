package filter

import (
	"fmt"
	"io"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const luaPolicyFuncName = "exclude"

// Policy is a Lua hook consulted for tables that neither the exact names nor
// the patterns claim. The script must define a global function
// exclude(schema, table) returning a boolean.
type Policy struct {
	l   *lua.LState
	log *zap.Logger

	fn lua.LValue
}

func NewPolicy(
	log *zap.Logger,
	source io.Reader, name string,
) (*Policy, error) {
	l := lua.NewState()

	p := &Policy{
		l:   l,
		log: log.Named("policy").With(zap.String("name", name)),
	}

	compiled, err := l.Load(source, name)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("lua source failed to compile: %w", err)
	}

	l.Push(compiled)
	if err := l.PCall(0, 0, nil); err != nil {
		l.Close()
		return nil, fmt.Errorf("load policy source: %w", err)
	}

	fn := l.GetGlobal(luaPolicyFuncName)
	if fn.Type() != lua.LTFunction {
		l.Close()
		return nil, fmt.Errorf(
			"lua policy must define a function %q, but it is %s",
			luaPolicyFuncName, fn.Type().String())
	}
	p.fn = fn

	return p, nil
}

func (p *Policy) Close() { p.l.Close() }

func (p *Policy) Exclude(schema, table string) (bool, error) {
	err := p.l.CallByParam(lua.P{
		Fn:      p.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(schema), lua.LString(table))
	if err != nil {
		return false, fmt.Errorf("call %s(%q, %q): %w", luaPolicyFuncName, schema, table, err)
	}
	excluded := p.l.ToBool(-1)
	p.l.Pop(1)
	p.log.Debug("policy decision",
		zap.String("schema", schema),
		zap.String("table", table),
		zap.Bool("excluded", excluded),
	)
	return excluded, nil
}
