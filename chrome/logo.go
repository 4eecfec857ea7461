package chrome

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultLogoPixels bounds the longest side of a decoded logo.
const DefaultLogoPixels = 600

// Logo is a decoded header logo re-encoded as PNG.
type Logo struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// DecodeLogo validates and normalizes image data: orientation is applied, the
// image is scaled down to fit maxPx and re-encoded as PNG.
func DecodeLogo(name string, data []byte, maxPx int) (*Logo, error) {
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("%s 不是图片文件", name)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("解码 %s 失败: %w", name, err)
	}
	if maxPx <= 0 {
		maxPx = DefaultLogoPixels
	}
	if b := img.Bounds(); b.Dx() > maxPx || b.Dy() > maxPx {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码 %s 失败: %w", name, err)
	}
	b := img.Bounds()
	return &Logo{Name: name, Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// LoadLogo tries the candidate paths in order and returns the first usable
// logo. A missing logo is not an error: failures are logged and nil is
// returned, the header then falls back to the logo text.
func LoadLogo(paths []string, baseDir string, log *zap.Logger) *Logo {
	if log == nil {
		log = zap.NewNop()
	}
	var errs error
	for _, p := range paths {
		if p == "" {
			continue
		}
		full := p
		if !filepath.IsAbs(full) && baseDir != "" {
			full = filepath.Join(baseDir, full)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		logo, err := DecodeLogo(filepath.Base(full), data, DefaultLogoPixels)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		log.Debug("Logo loaded", zap.String("event", "asset_load"), zap.String("path", full),
			zap.Int("width", logo.Width), zap.Int("height", logo.Height))
		return logo
	}
	if len(paths) > 0 {
		log.Warn("Logo not available, using text instead",
			zap.String("event", "asset_load"), zap.Strings("paths", paths), zap.Error(errs))
	}
	return nil
}
