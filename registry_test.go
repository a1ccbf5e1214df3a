package mediaplug

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/observability"
)

// engineState is shared by every fakeBackend of one engine, like the
// package-level once flag of a real engine.
type engineState struct {
	mu          sync.Mutex
	initialized bool
	inits       int
	attempts    int
}

type fakeBackend struct {
	name      string
	available bool
	initErr   error
	apis      GraphicsAPIs
	state     *engineState

	mu       sync.Mutex
	released int
}

func newFake(name string, available bool) *fakeBackend {
	return &fakeBackend{name: name, available: available, state: &engineState{}, apis: APIs(GraphicsOpenGL)}
}

func (b *fakeBackend) Name() string       { return b.name }
func (b *fakeBackend) Version() string    { return "1.0.0" }
func (b *fakeBackend) Metadata() Metadata { return Metadata{DisplayName: b.name, Graphics: b.apis} }
func (b *fakeBackend) Available() bool    { return b.available }

func (b *fakeBackend) IsGraphicsAPISupported(api GraphicsAPI) bool { return b.apis.Has(api) }

func (b *fakeBackend) Initialize(h host.Registrar) error {
	b.state.mu.Lock()
	defer b.state.mu.Unlock()

	b.state.attempts++
	if !b.available {
		return ErrUnavailable
	}
	if b.state.initialized {
		return nil
	}
	if b.initErr != nil {
		return b.initErr
	}
	if err := h.RegisterPlayerType(host.PlayerType{
		Name:   b.name + "Player",
		Engine: b.name,
		New:    func() (host.Player, error) { return nil, host.ErrNotSupported },
	}); err != nil {
		return err
	}
	b.state.inits++
	b.state.initialized = true
	return nil
}

func (b *fakeBackend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released++
	return nil
}

func (b *fakeBackend) releases() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *fakeBackend) query() QueryFunc {
	return func(QueryOptions) (Backend, bool) { return b, b.available }
}

// fakeOpener maps file names to entry points. Files without an entry fail to
// open, like shared libraries that do not export QueryBackend.
type fakeOpener struct {
	mu      sync.Mutex
	plugins map[string]QueryFunc
	opens   map[string]int
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{plugins: make(map[string]QueryFunc), opens: make(map[string]int)}
}

func (o *fakeOpener) add(file string, q QueryFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plugins[file] = q
}

func (o *fakeOpener) Open(path string) (QueryFunc, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	name := filepath.Base(path)
	o.opens[name]++
	q, ok := o.plugins[name]
	if !ok {
		return nil, fmt.Errorf("lookup %s in %s: symbol not found", EntryPoint, path)
	}
	return q, nil
}

func (o *fakeOpener) openCount(file string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[file]
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("\x7fELF"), 0o644))
	}
}

func newTestRegistry(opener Opener, opts ...Option) *Registry {
	opts = append([]Option{WithOpener(opener), WithLogger(observability.Discard())}, opts...)
	return NewRegistry(opts...)
}

func TestAddSearchDirectoryRejectsNonDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "plain.so")

	opener := newFakeOpener()
	opener.add("plain.so", newFake("plain", true).query())
	r := newTestRegistry(opener)

	assert.False(t, r.AddSearchDirectory(""))
	assert.False(t, r.AddSearchDirectory(filepath.Join(dir, "missing")))
	assert.False(t, r.AddSearchDirectory(filepath.Join(dir, "plain.so")))

	assert.Empty(t, r.AvailableBackends())
	assert.Empty(t, r.SearchDirectories())
}

func TestScanSkipsFilesWithoutEntryPoint(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libfoo.so", "libbar.so", "notes.txt")

	opener := newFakeOpener()
	r := newTestRegistry(opener)

	assert.True(t, r.AddSearchDirectory(dir))
	assert.Empty(t, r.AvailableBackends())
	assert.Equal(t, 1, opener.openCount("libfoo.so"))
	assert.Zero(t, opener.openCount("notes.txt"), "non-library files are not probed")
}

func TestScanRegistersOnlyAvailableBackends(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "engineA.so", "engineB.so")

	a := newFake("engineA", true)
	b := newFake("engineB", false)
	opener := newFakeOpener()
	opener.add("engineA.so", a.query())
	opener.add("engineB.so", b.query())

	r := newTestRegistry(opener)
	require.True(t, r.AddSearchDirectory(dir))

	assert.Equal(t, []string{"enginea"}, r.AvailableBackends())
	assert.Equal(t, 1, b.releases(), "unavailable backend is released at once")
	assert.Zero(t, a.releases())
}

func TestDuplicateNamesAreCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a_mdk.so", "b_mdk.so")

	first := newFake("MDK", true)
	second := newFake("mdk", true)
	opener := newFakeOpener()
	opener.add("a_mdk.so", first.query())
	opener.add("b_mdk.so", second.query())

	r := newTestRegistry(opener)
	require.True(t, r.AddSearchDirectory(dir))

	assert.Equal(t, []string{"mdk"}, r.AvailableBackends())
	got, ok := r.Backend("Mdk")
	require.True(t, ok)
	assert.Same(t, first, got, "first registration wins")
	assert.Equal(t, 1, second.releases())
}

func TestInitializeBackendTwiceRegistersOnce(t *testing.T) {
	a := newFake("Alpha", true)
	types := host.NewTypeRegistry()
	r := newTestRegistry(newFakeOpener(), WithHost(types), WithStatic(StaticBackend{Name: "alpha", Query: a.query()}))

	require.NoError(t, r.InitializeBackend("alpha"))
	require.NoError(t, r.InitializeBackend("ALPHA"))

	assert.Equal(t, 1, a.state.inits)
	assert.Equal(t, []string{"AlphaPlayer"}, types.Types())
}

func TestAutoSelectStopsAtFirstSuccess(t *testing.T) {
	a := newFake("a", true)
	a.initErr = errors.New("no display")
	b := newFake("b", true)
	c := newFake("c", true)

	r := newTestRegistry(newFakeOpener(), WithStatic(
		StaticBackend{Name: "a", Query: a.query()},
		StaticBackend{Name: "b", Query: b.query()},
		StaticBackend{Name: "c", Query: c.query()},
	))

	name, err := r.AutoSelect()
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	assert.Equal(t, 1, a.state.attempts, "failed candidates are not retried")
	assert.Equal(t, 1, b.state.inits)
	assert.Zero(t, c.state.attempts, "candidates after the first success are never attempted")
}

func TestEmptyRegistry(t *testing.T) {
	r := newTestRegistry(newFakeOpener())

	assert.Empty(t, r.AvailableBackends())
	assert.ErrorIs(t, r.InitializeBackend("anything"), ErrUnknownBackend)
	assert.False(t, r.IsGraphicsAPISupported("anything", GraphicsOpenGL))

	_, err := r.AutoSelect()
	assert.ErrorIs(t, err, ErrNoBackend)
	_, err = r.Select("")
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestSelectPreferredHasNoFallback(t *testing.T) {
	a := newFake("a", true)
	r := newTestRegistry(newFakeOpener(), WithStatic(StaticBackend{Name: "a", Query: a.query()}))

	_, err := r.Select("vlc")
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Zero(t, a.state.attempts, "auto-selection must not run as a fallback")

	name, err := r.Select("A")
	require.NoError(t, err)
	assert.Equal(t, "a", name)
}

func TestSelectPreferredInitializeFailure(t *testing.T) {
	a := newFake("a", true)
	a.initErr = errors.New("boom")
	b := newFake("b", true)
	r := newTestRegistry(newFakeOpener(), WithStatic(
		StaticBackend{Name: "a", Query: a.query()},
		StaticBackend{Name: "b", Query: b.query()},
	))

	_, err := r.Select("a")
	require.Error(t, err)
	assert.Zero(t, b.state.attempts)
}

func TestAddSearchDirectoryDeduplicates(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "engine.so")
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	opener := newFakeOpener()
	opener.add("engine.so", newFake("engine", true).query())
	r := newTestRegistry(opener)

	assert.True(t, r.AddSearchDirectory(dir))
	assert.False(t, r.AddSearchDirectory(dir+string(filepath.Separator)))
	assert.False(t, r.AddSearchDirectory(link))

	assert.Len(t, r.SearchDirectories(), 1)
	assert.Equal(t, 1, opener.openCount("engine.so"))
}

func TestSearchDirectoriesKeepInsertionOrder(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	r := newTestRegistry(newFakeOpener())

	added := r.AddSearchDirectories(first + ";;" + second + ";" + first)
	assert.Equal(t, 2, added)

	dirs := r.SearchDirectories()
	require.Len(t, dirs, 2)
	wantFirst, _ := filepath.EvalSymlinks(first)
	wantSecond, _ := filepath.EvalSymlinks(second)
	assert.Equal(t, []string{wantFirst, wantSecond}, dirs)
}

func TestStaticModeIgnoresSearchDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "engine.so")
	opener := newFakeOpener()
	opener.add("engine.so", newFake("engine", true).query())

	unavailable := newFake("broken", false)
	r := newTestRegistry(opener, WithStatic(
		StaticBackend{Name: "static", Query: newFake("static", true).query()},
		StaticBackend{Name: "broken", Query: unavailable.query()},
		StaticBackend{Name: "nil"},
	))

	assert.True(t, r.Static())
	assert.False(t, r.AddSearchDirectory(dir))
	assert.Zero(t, opener.openCount("engine.so"))
	assert.Equal(t, []string{"static"}, r.AvailableBackends())
	assert.Equal(t, 1, unavailable.releases())
}

func TestProbeCacheSkipsKnownNonPlugins(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libz.so")
	opener := newFakeOpener()
	r := newTestRegistry(opener)

	require.True(t, r.AddSearchDirectory(dir))
	r.Rescan()
	assert.Equal(t, 1, opener.openCount("libz.so"))

	// A changed file is probed again.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "libz.so"), future, future))
	r.Rescan()
	assert.Equal(t, 2, opener.openCount("libz.so"))
}

func TestProbeCacheDisabled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "libz.so")
	opener := newFakeOpener()
	r := newTestRegistry(opener, WithProbeCache(0))

	require.True(t, r.AddSearchDirectory(dir))
	r.Rescan()
	assert.Equal(t, 2, opener.openCount("libz.so"))
}

func TestRescanSkipsRejectedPlugins(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a_mdk.so", "b_mdk.so", "off.so")

	first := newFake("MDK", true)
	second := newFake("mdk", true)
	off := newFake("off", false)
	opener := newFakeOpener()
	opener.add("a_mdk.so", first.query())
	opener.add("b_mdk.so", second.query())
	opener.add("off.so", off.query())

	r := newTestRegistry(opener)
	require.True(t, r.AddSearchDirectory(dir))
	for i := 0; i < 5; i++ {
		r.Rescan()
	}

	assert.Equal(t, []string{"mdk"}, r.AvailableBackends())
	assert.Equal(t, 1, opener.openCount("b_mdk.so"), "duplicate is not reopened")
	assert.Equal(t, 1, opener.openCount("off.so"), "unavailable plugin is not reopened")
	assert.Equal(t, 1, second.releases())
	assert.Equal(t, 1, off.releases())

	// Once the registered file goes away the duplicate may take its name.
	require.NoError(t, os.Remove(filepath.Join(dir, "a_mdk.so")))
	r.Rescan()

	b, ok := r.Backend("mdk")
	require.True(t, ok)
	assert.Same(t, second, b)
	assert.Equal(t, 2, opener.openCount("b_mdk.so"))
}

func TestRescanRegistersNewAndReleasesRemoved(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "one.so")

	one := newFake("one", true)
	two := newFake("two", true)
	opener := newFakeOpener()
	opener.add("one.so", one.query())
	opener.add("two.so", two.query())

	r := newTestRegistry(opener)
	require.True(t, r.AddSearchDirectory(dir))
	assert.Equal(t, []string{"one"}, r.AvailableBackends())

	touch(t, dir, "two.so")
	r.Rescan()
	assert.Equal(t, []string{"one", "two"}, r.AvailableBackends())
	assert.Equal(t, 1, opener.openCount("one.so"), "registered files are not reopened")

	require.NoError(t, r.InitializeBackend("two"))
	require.NoError(t, os.Remove(filepath.Join(dir, "one.so")))
	require.NoError(t, os.Remove(filepath.Join(dir, "two.so")))
	r.Rescan()

	assert.Equal(t, []string{"two"}, r.AvailableBackends(), "initialized backends are kept")
	assert.Equal(t, 1, one.releases())
	assert.Zero(t, two.releases())
}

func TestIsGraphicsAPISupported(t *testing.T) {
	a := newFake("a", true)
	a.apis = APIs(GraphicsVulkan, GraphicsMetal)
	r := newTestRegistry(newFakeOpener(), WithStatic(StaticBackend{Name: "a", Query: a.query()}))

	assert.True(t, r.IsGraphicsAPISupported("A", GraphicsVulkan))
	assert.False(t, r.IsGraphicsAPISupported("a", GraphicsOpenGL))
	assert.False(t, r.IsGraphicsAPISupported("b", GraphicsVulkan))
}

func TestAvailableBackendsIsSnapshot(t *testing.T) {
	r := newTestRegistry(newFakeOpener(), WithStatic(
		StaticBackend{Name: "a", Query: newFake("a", true).query()},
		StaticBackend{Name: "b", Query: newFake("b", true).query()},
	))

	names := r.AvailableBackends()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.AvailableBackends())
}

func TestCloseReleasesEveryBackend(t *testing.T) {
	a := newFake("a", true)
	b := newFake("b", true)
	r := newTestRegistry(newFakeOpener(), WithStatic(
		StaticBackend{Name: "a", Query: a.query()},
		StaticBackend{Name: "b", Query: b.query()},
	))

	require.NoError(t, r.Close())
	assert.Equal(t, 1, a.releases())
	assert.Equal(t, 1, b.releases())
	assert.Empty(t, r.AvailableBackends())
	assert.False(t, r.AddSearchDirectory(t.TempDir()))
}

func TestQueryPanicIsAbsorbed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "bad.so", "good.so")
	opener := newFakeOpener()
	opener.add("bad.so", func(QueryOptions) (Backend, bool) { panic("plugin bug") })
	opener.add("good.so", newFake("good", true).query())

	r := newTestRegistry(opener)
	require.True(t, r.AddSearchDirectory(dir))
	assert.Equal(t, []string{"good"}, r.AvailableBackends())
}

func TestQueryReceivesOptions(t *testing.T) {
	var got QueryOptions
	q := func(opts QueryOptions) (Backend, bool) {
		got = opts
		return nil, false
	}
	newTestRegistry(newFakeOpener(),
		WithLibraries(map[string]string{"mpv": "/opt/libmpv.so"}),
		WithStatic(StaticBackend{Name: "mpv", Query: q}),
	)

	assert.Equal(t, "/opt/libmpv.so", got.Library("mpv"))
	assert.Empty(t, got.Library("vlc"))
	assert.NotNil(t, got.Log())
}

func TestConcurrentAddSearchDirectory(t *testing.T) {
	opener := newFakeOpener()
	var dirs []string
	for i := 0; i < 8; i++ {
		dir := t.TempDir()
		file := fmt.Sprintf("engine%d.so", i)
		touch(t, dir, file)
		opener.add(file, newFake(fmt.Sprintf("engine%d", i), true).query())
		dirs = append(dirs, dir)
	}
	r := newTestRegistry(opener)

	var wg sync.WaitGroup
	for _, dir := range dirs {
		wg.Add(2)
		go func(d string) { defer wg.Done(); r.AddSearchDirectory(d) }(dir)
		go func() { defer wg.Done(); _ = r.AvailableBackends() }()
	}
	wg.Wait()

	assert.Len(t, r.AvailableBackends(), 8)
	assert.Len(t, r.SearchDirectories(), 8)
}

func TestRegistryMetrics(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.so", "b.so", "c.so")
	opener := newFakeOpener()
	opener.add("a.so", newFake("a", true).query())
	opener.add("b.so", newFake("b", false).query())

	m := observability.NewMetrics(prometheus.NewRegistry())
	r := newTestRegistry(opener, WithMetrics(m))
	require.True(t, r.AddSearchDirectory(dir))
	require.NoError(t, r.InitializeBackend("a"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanFilesTotal.WithLabelValues(observability.ScanResultRegistered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanFilesTotal.WithLabelValues(observability.ScanResultUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanFilesTotal.WithLabelValues(observability.ScanResultNotPlugin)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendsRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InitializationsTotal.WithLabelValues("a", "ok")))
}
