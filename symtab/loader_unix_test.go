//go:build darwin || freebsd || linux

package symtab

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func libcPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/usr/lib/libSystem.B.dylib"
	case "freebsd":
		return "libc.so.7"
	default:
		return "libc.so.6"
	}
}

func newLibcTable() (*Table, *Func[func(int32) int32], *Func[func(string) uintptr]) {
	abs := NewFunc[func(int32) int32]("abs")
	strlen := NewFunc[func(string) uintptr]("strlen")
	return New("libc", Dynamic(), abs, strlen), abs, strlen
}

func TestDynamicLoaderLibc(t *testing.T) {
	table, abs, strlen := newLibcTable()
	if err := table.Load(libcPath()); err != nil {
		t.Skipf("libc not loadable: %v", err)
	}
	defer table.Unload()

	require.True(t, table.IsLoaded())
	assert.Equal(t, int32(42), Call(table, abs, 0, func(fn func(int32) int32) int32 { return fn(-42) }))
	assert.Equal(t, uintptr(5), Call(table, strlen, 0, func(fn func(string) uintptr) uintptr { return fn("hello") }))

	require.NoError(t, table.Unload())
	assert.Equal(t, int32(0), Call(table, abs, 0, func(fn func(int32) int32) int32 { return fn(-42) }))
}

func TestDynamicLoaderMissingSymbol(t *testing.T) {
	missing := NewFunc[func()]("mediaplug_no_such_symbol")
	table := New("libc", Dynamic(), missing)
	if err := table.Load(libcPath()); err != nil {
		t.Skipf("libc not loadable: %v", err)
	}
	defer table.Unload()

	assert.False(t, table.IsLoaded())
	assert.Equal(t, []string{"mediaplug_no_such_symbol"}, table.Missing())
}

func TestDynamicLoaderOpenFailure(t *testing.T) {
	table, _, _ := newLibcTable()
	assert.Error(t, table.Load("/nonexistent/libmediaplug_missing.so"))
	assert.False(t, table.IsLoaded())
}

// BenchmarkDynamicCallOverhead measures a purego call through the shim.
func BenchmarkDynamicCallOverhead(b *testing.B) {
	table, abs, _ := newLibcTable()
	if err := table.Load(libcPath()); err != nil {
		b.Skipf("libc not loadable: %v", err)
	}
	defer table.Unload()

	call := func(fn func(int32) int32) int32 { return fn(-1) }
	for i := 0; i < b.N; i++ {
		_ = Call(table, abs, 0, call)
	}
}
