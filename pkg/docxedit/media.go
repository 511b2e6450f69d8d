package docxedit

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageSize decodes the pixel dimensions from an image header.
func imageSize(data []byte) (width, height int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// resolveImageSize completes a requested pixel size. A given side is kept;
// a missing side follows the image's aspect ratio, or the fallback when the
// image cannot be decoded. With neither side given the natural size is used.
func resolveImageSize(data []byte, width, height, fallbackW, fallbackH int) (int, int) {
	if width > 0 && height > 0 {
		return width, height
	}
	dw, dh, ok := imageSize(data)
	switch {
	case !ok:
		if width <= 0 {
			width = fallbackW
		}
		if height <= 0 {
			height = fallbackH
		}
	case width > 0:
		height = max(1, (width*dh+dw/2)/dw)
	case height > 0:
		width = max(1, (height*dw+dh/2)/dh)
	default:
		width, height = dw, dh
	}
	return width, height
}

// imageExtension returns the file extension (without dot) for image data,
// preferring the extension of name when it has one.
func imageExtension(name string, data []byte) string {
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")); ext != "" {
		return ext
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if format == "jpeg" {
			return "jpg"
		}
		return format
	}
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/webp":
		return "webp"
	}
	return "png"
}

// injectedMediaName returns a media entry name that cannot collide with
// existing entries.
func injectedMediaName(ext string) string {
	return "injected_" + uuid.NewString() + "." + ext
}

// MediaDir returns the scratch directory images are extracted to when
// reading the archive at docPath.
func MediaDir(docPath string) string {
	return filepath.Join(filepath.Dir(docPath), GetGlobalConfig().MediaDirName)
}

// CleanupMedia removes the scratch media directory inside dir. It reports
// whether the directory existed.
func CleanupMedia(dir string) (bool, error) {
	mediaDir := filepath.Join(dir, GetGlobalConfig().MediaDirName)
	if _, err := os.Stat(mediaDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, ioErr("cleanup media", mediaDir, err)
	}
	if err := os.RemoveAll(mediaDir); err != nil {
		return true, ioErr("cleanup media", mediaDir, err)
	}
	GetLogger().Debug("removed media directory", "dir", mediaDir)
	return true, nil
}
