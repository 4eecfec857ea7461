package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/gobold"
)

func TestRegisterFallsBackToSecondaryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bold.ttf"), gobold.TTF, 0o644))

	core, logs := observer.New(zapcore.DebugLevel)
	reg := NewRegistry(dir, zap.New(core))

	m := reg.Register(Asset{Name: "Arial-Bold", Primary: "broken.ttf", Fallback: "bold.ttf", Builtin: BuiltinBold})
	assert.Equal(t, filepath.Join(dir, "bold.ttf"), m.Source)
	assert.Equal(t, "Arial-Bold", m.Name)

	failures := reg.Failures("Arial-Bold")
	require.Len(t, failures, 1)
	var loadErr *AssetLoadError
	require.True(t, errors.As(failures[0], &loadErr))
	assert.Equal(t, filepath.Join(dir, "broken.ttf"), loadErr.Source)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).FilterField(zap.String("event", "asset_load"))
	assert.Equal(t, 1, warns.Len())
}

func TestRegisterUsesBuiltinWhenFilesMissing(t *testing.T) {
	reg := NewRegistry(t.TempDir(), nil)

	m := reg.Register(Asset{Name: "Body", Primary: "missing.ttf", Fallback: "also-missing.ttf", Builtin: BuiltinItalic})
	assert.Equal(t, "builtin:"+BuiltinItalic, m.Source)
	assert.Len(t, reg.Failures("Body"), 2)
	assert.Greater(t, m.TextWidth("abc", 10), 0.0)
}

func TestRegisterFirstWins(t *testing.T) {
	reg := NewRegistry("", nil)

	first := reg.Register(Asset{Name: "Body", Builtin: BuiltinMono})
	second := reg.Register(Asset{Name: "Body", Builtin: BuiltinBold})
	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, "builtin:"+BuiltinMono, reg.Metrics("Body").Source)
}

func TestMetricsUnknownFontUsesBuiltin(t *testing.T) {
	reg := NewRegistry("", nil)

	m := reg.Metrics("Nope")
	assert.Equal(t, "builtin:"+BuiltinRegular, m.Source)
	assert.False(t, reg.Known("Nope"))
	assert.Nil(t, reg.Failures("Nope"))
}

func TestMetricsScaleWithSize(t *testing.T) {
	m := NewRegistry("", nil).Register(Asset{Name: "Body"})

	small := m.TextWidth("RELATÓRIO", 8)
	large := m.TextWidth("RELATÓRIO", 16)
	assert.InDelta(t, small*2, large, 0.01)
	assert.Greater(t, m.Ascent(10), 0.0)
	assert.Greater(t, m.LineHeight(10), m.Ascent(10))
}

func TestRegisterConcurrent(t *testing.T) {
	reg := NewRegistry("", nil)

	var wg sync.WaitGroup
	sources := make([]string, 16)
	for i := range sources {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sources[i] = reg.Register(Asset{Name: "Shared", Builtin: BuiltinBold}).Source
		}(i)
	}
	wg.Wait()
	for _, s := range sources {
		assert.Equal(t, "builtin:"+BuiltinBold, s)
	}
}

func TestBuiltinLookup(t *testing.T) {
	data, err := Builtin("builtin:go-bold")
	require.NoError(t, err)
	assert.Equal(t, gobold.TTF, data)

	_, err = Builtin("Comic")
	assert.Error(t, err)
	assert.Contains(t, BuiltinNames(), BuiltinRegular)
}
