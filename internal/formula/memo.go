package formula

import "sync"

// Memo caches compiled programs by source text. The zero value is ready to use.
type Memo struct {
	programs sync.Map // string -> compiled
}

type compiled struct {
	prog *Program
	err  error
}

// Compile returns the cached program for src, compiling it on first use.
// Compile errors are cached as well.
func (m *Memo) Compile(src string) (*Program, error) {
	if cached, ok := m.programs.Load(src); ok {
		c := cached.(compiled)
		return c.prog, c.err
	}
	prog, err := Compile(src)
	actual, _ := m.programs.LoadOrStore(src, compiled{prog: prog, err: err})
	c := actual.(compiled)
	return c.prog, c.err
}

// Evaluate behaves like the package level Evaluate but reuses compiled programs.
func (m *Memo) Evaluate(src string, bindings map[string]float64) float64 {
	prog, err := m.Compile(src)
	if err != nil {
		return 0
	}
	return prog.Eval(bindings)
}
