package ocr

import (
	"context"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// A zone is a fraction-of-page crop recognized on its own. Scanned Spanish
// invoices put the identity block on top, the totals block lower right and
// the legal footer at the bottom; some print the tax ID vertically along the
// left edge.
type zone struct {
	name       string
	x, y, w, h float64 // fractions of page width and height
	rotate     bool    // vertical text, turn before recognizing
	whitelist  string  // restrict the character set, "" = full
}

var pageZones = []zone{
	{name: "header", x: 0, y: 0, w: 1, h: 0.25},
	{name: "footer", x: 0, y: 0.75, w: 1, h: 0.25},
	{name: "left-margin", x: 0, y: 0, w: 0.12, h: 1, rotate: true},
	{name: "totals", x: 0.55, y: 0.60, w: 0.45, h: 0.40, whitelist: "0123456789.,:%€- "},
}

// zoneText recognizes each page zone separately and joins whatever came out.
// A small high-contrast crop recovers amounts that drown in the whole-page
// pass, so this text is appended to it rather than replacing it.
func (e *Extractor) zoneText(ctx context.Context, imgPath string) string {
	img, err := imaging.Open(imgPath)
	if err != nil {
		e.logger.Debug("zone crop open failed", "image", imgPath, "error", err)
		return ""
	}
	bounds := img.Bounds()

	var b strings.Builder
	for _, z := range pageZones {
		crop := imaging.Grayscale(cropZone(img, bounds, z))
		zonePath := imgPath + "." + z.name + ".png"
		if err := imaging.Save(crop, zonePath); err != nil {
			e.logger.Debug("zone save failed", "zone", z.name, "error", err)
			continue
		}

		args := []string{"--psm", "6"}
		if z.whitelist != "" {
			args = append(args, "-c", "tessedit_char_whitelist="+z.whitelist)
		}
		txt := e.tesseract(ctx, zonePath, args...)
		os.Remove(zonePath)

		if strings.TrimSpace(txt) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String()
}

func cropZone(img image.Image, bounds image.Rectangle, z zone) *image.NRGBA {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	rect := image.Rect(
		bounds.Min.X+int(z.x*w),
		bounds.Min.Y+int(z.y*h),
		bounds.Min.X+int((z.x+z.w)*w),
		bounds.Min.Y+int((z.y+z.h)*h),
	)
	crop := imaging.Crop(img, rect)
	if z.rotate {
		crop = imaging.Rotate90(crop)
	}
	return crop
}
