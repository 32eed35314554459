package component

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScanner records scan requests and answers from a fixed table.
type fakeScanner struct {
	mu         sync.Mutex
	calls      []string
	components map[string]Component
}

func (f *fakeScanner) Scan(_ context.Context, name string) (Component, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	c, ok := f.components[name]
	return c, ok
}

func (f *fakeScanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testManager(t *testing.T, scanner Scanner) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "components.json")
	return LoadOrCreate(path, scanner), path
}

func shutdown(t *testing.T, m *Manager) {
	t.Helper()
	m.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Join(ctx))
}

func TestManager_ScanDedupeAndPersist(t *testing.T) {
	scanner := &fakeScanner{components: map[string]Component{
		"amsmath.sty": {Name: "amsmath.sty", Commands: []string{"boxed"}},
	}}
	m, path := testManager(t, scanner)
	require.NoError(t, m.Start())

	m.Enqueue("amsmath.sty")
	m.Enqueue("amsmath.sty")
	shutdown(t, m)

	assert.Equal(t, 1, scanner.callCount())

	c, ok := m.Get().Find("amsmath.sty")
	require.True(t, ok)
	assert.Equal(t, []string{"boxed"}, c.Commands)

	// The drained result reached disk before Join returned.
	db, err := LoadDatabase(path)
	require.NoError(t, err)
	_, ok = db.Find("amsmath.sty")
	assert.True(t, ok)
}

func TestManager_UnknownComponentRememberedAsMiss(t *testing.T) {
	scanner := &fakeScanner{components: map[string]Component{}}
	m, _ := testManager(t, scanner)
	require.NoError(t, m.Start())

	m.Enqueue("ghost.sty")
	shutdown(t, m)

	assert.Equal(t, 1, scanner.callCount())
	_, ok := m.Get().Find("ghost.sty")
	assert.False(t, ok)
}

func TestManager_DoubleStart(t *testing.T) {
	m, _ := testManager(t, &fakeScanner{})
	require.NoError(t, m.Start())
	assert.ErrorIs(t, m.Start(), ErrAlreadyStarted)
	shutdown(t, m)
}

func TestManager_JoinBeforeStart(t *testing.T) {
	m, _ := testManager(t, &fakeScanner{})
	assert.ErrorIs(t, m.Join(context.Background()), ErrNotStarted)
}

func TestManager_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m := LoadOrCreate(path, &fakeScanner{})
	assert.Empty(t, m.Get().Components)
}

func TestManager_PersistedComponentsNotRescanned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	require.NoError(t, SaveDatabase(path, Database{Components: []Component{
		{Name: "amsmath.sty"},
	}}))

	scanner := &fakeScanner{}
	m := LoadOrCreate(path, scanner)
	require.NoError(t, m.Start())

	m.Enqueue("amsmath.sty")
	shutdown(t, m)

	assert.Equal(t, 0, scanner.callCount())
}

func TestManager_EnqueueAfterCloseDropped(t *testing.T) {
	scanner := &fakeScanner{components: map[string]Component{
		"late.sty": {Name: "late.sty"},
	}}
	m, _ := testManager(t, scanner)
	require.NoError(t, m.Start())
	shutdown(t, m)

	m.Enqueue("late.sty")
	assert.Equal(t, 0, scanner.callCount())
}
