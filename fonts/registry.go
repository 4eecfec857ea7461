// Package fonts keeps the process-wide font registry: every named font is
// loaded at most once, trying its primary file, then its fallback file, then a
// builtin Go face. Loading never fails outward; failed attempts are logged and
// kept for inspection.
package fonts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"github.com/tdewolff/canvas"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/reportpress/layout"
)

// Asset describes a logical font and where its data may come from.
type Asset struct {
	Name     string `yaml:"name" validate:"required"`
	Primary  string `yaml:"path,omitempty"`
	Fallback string `yaml:"fallback,omitempty"`
	Builtin  string `yaml:"builtin,omitempty"`
}

// AssetLoadError records one failed candidate while loading a font.
type AssetLoadError struct {
	Font   string
	Source string
	Err    error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("加载字体 %s（%s）失败: %v", e.Font, e.Source, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Metrics exposes measurements of a loaded font. All values are in points.
type Metrics struct {
	Name   string
	Source string
	family *canvas.FontFamily
}

// Face returns a canvas face of the given size (pt) and color.
func (m Metrics) Face(size float64, col color.Color) *canvas.FontFace {
	if col == nil {
		col = canvas.Black
	}
	return m.family.Face(size, col, canvas.FontRegular, canvas.FontNormal)
}

// TextWidth 返回文本在给定字号下的宽度（pt）。canvas 内部以 mm 计量。
func (m Metrics) TextWidth(text string, size float64) float64 {
	return m.Face(size, nil).TextWidth(text) * layout.MmToPt
}

// Ascent returns the ascender height (pt) at the given size.
func (m Metrics) Ascent(size float64) float64 {
	return m.Face(size, nil).Metrics().Ascent * layout.MmToPt
}

// LineHeight returns the natural line height (pt) at the given size.
func (m Metrics) LineHeight(size float64) float64 {
	return m.Face(size, nil).Metrics().LineHeight * layout.MmToPt
}

type candidate struct {
	source string
	load   func() ([]byte, error)
}

type entry struct {
	once     sync.Once
	asset    Asset
	metrics  Metrics
	failures error
}

// Registry caches loaded fonts by logical name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	baseDir string
	log     *zap.Logger

	readFile func(string) ([]byte, error)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry

	fallbackOnce    sync.Once
	fallbackMetrics Metrics
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry("", nil)
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry. Relative font paths are resolved
// against baseDir.
func NewRegistry(baseDir string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entries:  map[string]*entry{},
		baseDir:  baseDir,
		log:      log,
		readFile: os.ReadFile,
	}
}

// Register loads the asset unless a font with the same name is already known
// and returns its metrics. The first registration of a name wins.
func (r *Registry) Register(asset Asset) Metrics {
	if asset.Name == "" {
		return builtinMetrics()
	}
	r.mu.Lock()
	e, ok := r.entries[asset.Name]
	if !ok {
		e = &entry{asset: asset}
		r.entries[asset.Name] = e
	}
	log := r.log
	r.mu.Unlock()

	e.once.Do(func() { r.load(e, log) })
	return e.metrics
}

// RegisterAll registers every asset in order.
func (r *Registry) RegisterAll(assets []Asset) {
	for _, a := range assets {
		r.Register(a)
	}
}

// Metrics returns the metrics of a registered font. Unknown names resolve to
// the builtin regular face.
func (r *Registry) Metrics(name string) Metrics {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return builtinMetrics()
	}
	e.once.Do(func() { r.load(e, r.logger()) })
	return e.metrics
}

// Known reports whether the name has been registered.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Failures returns the aggregated load failures recorded for a font, nil when
// the primary source loaded cleanly.
func (r *Registry) Failures(name string) []error {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return multierr.Errors(e.failures)
}

func (r *Registry) logger() *zap.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.log
}

func (r *Registry) load(e *entry, log *zap.Logger) {
	for _, c := range r.candidates(e.asset) {
		data, err := c.load()
		if err == nil && !filetype.IsFont(data) {
			err = fmt.Errorf("不是可识别的字体文件")
		}
		if err == nil {
			family := canvas.NewFontFamily(e.asset.Name)
			if err = family.LoadFont(data, 0, canvas.FontRegular); err == nil {
				e.metrics = Metrics{Name: e.asset.Name, Source: c.source, family: family}
				log.Debug("Font loaded", zap.String("font", e.asset.Name), zap.String("source", c.source))
				return
			}
		}
		failure := &AssetLoadError{Font: e.asset.Name, Source: c.source, Err: err}
		e.failures = multierr.Append(e.failures, failure)
		log.Warn("Font candidate rejected", zap.String("event", "asset_load"),
			zap.String("font", e.asset.Name), zap.String("source", c.source), zap.Error(err))
	}
	// 所有候选都失败时退回到内置常规体，保证调用方始终拿到可用的度量。
	m := builtinMetrics()
	m.Name = e.asset.Name
	e.metrics = m
}

func (r *Registry) candidates(a Asset) []candidate {
	var list []candidate
	for _, p := range []string{a.Primary, a.Fallback} {
		if strings.TrimSpace(p) == "" {
			continue
		}
		path := r.resolve(p)
		list = append(list, candidate{
			source: path,
			load:   func() ([]byte, error) { return r.readFile(path) },
		})
	}
	name, data := builtinFor(a.Builtin)
	list = append(list, candidate{
		source: "builtin:" + name,
		load:   func() ([]byte, error) { return data, nil },
	})
	return list
}

func (r *Registry) resolve(path string) string {
	r.mu.RLock()
	base := r.baseDir
	r.mu.RUnlock()
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func builtinMetrics() Metrics {
	fallbackOnce.Do(func() {
		family := canvas.NewFontFamily(BuiltinRegular)
		name, data := builtinFor(BuiltinRegular)
		if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
			panic(fmt.Sprintf("内置字体 %s 无法加载: %v", name, err))
		}
		fallbackMetrics = Metrics{Name: name, Source: "builtin:" + name, family: family}
	})
	return fallbackMetrics
}
