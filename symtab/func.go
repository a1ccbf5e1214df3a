package symtab

// Symbol is one declared entry of a Table. It is implemented by *Func.
type Symbol interface {
	SymbolName() string

	resolved() bool
	bind(l Loader, addr uintptr)
	reset()
}

// Func is an optional typed function resolved from a library.
//
// F must be a func type the Loader can bind (for the purego loader: integer,
// float, bool, string, uintptr and unsafe.Pointer arguments and results).
type Func[F any] struct {
	name string
	fn   F
	ok   bool
}

// NewFunc declares a symbol named name with signature F.
func NewFunc[F any](name string) *Func[F] {
	return &Func[F]{name: name}
}

func (f *Func[F]) SymbolName() string { return f.name }

func (f *Func[F]) resolved() bool { return f.ok }

func (f *Func[F]) bind(l Loader, addr uintptr) {
	var fn F
	l.Bind(&fn, addr)
	f.fn = fn
	f.ok = true
}

func (f *Func[F]) reset() {
	var zero F
	f.fn = zero
	f.ok = false
}

// Call invokes f through call while holding t's read lock and returns its
// result. If the table is unloaded or f is unresolved, def is returned and
// call is never run.
func Call[F, R any](t *Table, f *Func[F], def R, call func(F) R) R {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.handle == 0 || !f.ok {
		return def
	}
	return call(f.fn)
}

// Do is Call for functions without a result. It reports whether the native
// function ran.
func Do[F any](t *Table, f *Func[F], call func(F)) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.handle == 0 || !f.ok {
		return false
	}
	call(f.fn)
	return true
}

// Call2 is Call for two functions that must run under one lock hold, such as
// a getter and the free for the memory it returns. def is returned unless
// both are resolved.
func Call2[F, G, R any](t *Table, f *Func[F], g *Func[G], def R, call func(F, G) R) R {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.handle == 0 || !f.ok || !g.ok {
		return def
	}
	return call(f.fn, g.fn)
}
