package ocr

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

var reOSDRotate = regexp.MustCompile(`Rotate:\s*(\d+)`)

// ocrText renders the document with pdftoppm and recognizes it page by page.
// Page images are deleted as soon as they are read so a long scan never
// accumulates a directory of rasters.
func (e *Extractor) ocrText(ctx context.Context, path string) string {
	tmpDir, err := os.MkdirTemp("", "facturas-pp-*")
	if err != nil {
		e.logger.Warn("ocr temp dir failed", "error", err)
		return ""
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	if _, _, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix); err != nil {
		e.logger.Warn("pdftoppm failed", "path", path, "error", err)
		return ""
	}

	// pdftoppm names pages prefix-1.png, prefix-2.png, ...
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		e.logger.Warn("pdftoppm produced no images", "path", path)
		return ""
	}

	var b strings.Builder
	for i, img := range pages {
		txt := e.recognizePage(ctx, img)
		if b.Len() > 0 && txt != "" {
			b.WriteString("\n")
		}
		b.WriteString(txt)
		os.Remove(img)

		if e.cfg.PageSleep > 0 && i < len(pages)-1 {
			select {
			case <-ctx.Done():
				return b.String()
			case <-time.After(e.cfg.PageSleep):
			}
		}
	}
	return b.String()
}

func (e *Extractor) recognizePage(ctx context.Context, imgPath string) string {
	if e.cfg.DetectRotation {
		if deg := e.detectRotation(ctx, imgPath); deg != 0 {
			if err := straighten(imgPath, deg); err != nil {
				e.logger.Debug("rotation fix failed", "image", imgPath, "error", err)
			}
		}
	}

	full := e.tesseract(ctx, imgPath, "--psm", "6")
	if !e.cfg.ZoneOCR {
		return full
	}

	zoneTxt := e.zoneText(ctx, imgPath)
	switch {
	case zoneTxt == "":
		return full
	case full == "":
		return zoneTxt
	default:
		return full + "\n" + zoneTxt
	}
}

// detectRotation asks tesseract's OSD pass how far the page is turned.
// Anything it cannot answer counts as upright.
func (e *Extractor) detectRotation(ctx context.Context, imgPath string) int {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "--psm", "0")
	if err != nil {
		return 0
	}
	m := reOSDRotate.FindSubmatch(out)
	if m == nil {
		return 0
	}
	deg, _ := strconv.Atoi(string(m[1]))
	switch deg {
	case 90, 180, 270:
		return deg
	}
	return 0
}

// straighten rewrites the page image so the text runs horizontal. OSD reports
// the clockwise turn needed; imaging's Rotate functions turn counter-clockwise.
func straighten(imgPath string, deg int) error {
	img, err := imaging.Open(imgPath)
	if err != nil {
		return err
	}
	var fixed image.Image
	switch deg {
	case 90:
		fixed = imaging.Rotate270(img)
	case 180:
		fixed = imaging.Rotate180(img)
	case 270:
		fixed = imaging.Rotate90(img)
	default:
		return nil
	}
	return imaging.Save(fixed, imgPath)
}

func (e *Extractor) tesseract(ctx context.Context, imgPath string, extra ...string) string {
	args := []string{imgPath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, extra...)

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		e.logger.Debug("tesseract failed", "image", imgPath, "error", err)
		return ""
	}
	return string(out)
}
