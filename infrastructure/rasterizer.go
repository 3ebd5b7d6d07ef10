package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/unidoc/unipdf/v3/render"
	"golang.org/x/image/draw"

	"resume-ranker/config"
	"resume-ranker/domain"
)

// SetUnidocLicense installs a metered unipdf license. An empty key is a no-op.
func SetUnidocLicense(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set unidoc license: %w", err)
	}
	return nil
}

// Rasterizer renders PDF pages to PNG images at a fixed DPI.
type Rasterizer struct {
	dpi           float64
	maxPages      int
	maxPixelWidth int
}

func NewRasterizer(cfg config.RasterConfig) *Rasterizer {
	dpi := cfg.DPI
	if dpi < config.MinDPI {
		dpi = config.MinDPI
	}
	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 5
	}
	return &Rasterizer{dpi: dpi, maxPages: maxPages, maxPixelWidth: cfg.MaxPixelWidth}
}

// Rasterize returns the first MaxPages pages of the document in page order.
// Errors wrap domain.ErrUnreadableDocument or domain.ErrEmptyDocument.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte) ([]domain.PageImage, error) {
	reader, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}
	if numPages > r.maxPages {
		numPages = r.maxPages
	}

	device := render.NewImageDevice()
	images := make([]domain.PageImage, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := reader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrUnreadableDocument, i, err)
		}

		mediaBox, err := page.GetMediaBox()
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrUnreadableDocument, i, err)
		}
		widthPts := mediaBox.Urx - mediaBox.Llx
		device.OutputWidth = int(widthPts * r.dpi / 72)

		img, err := device.Render(page)
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %v", domain.ErrUnreadableDocument, i, err)
		}

		encoded, err := encodePNG(downscale(img, r.widthLimit(widthPts)))
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i, err)
		}
		images = append(images, domain.PageImage{MIMEType: "image/png", Data: encoded})
	}

	if len(images) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	RasterizedPages.Observe(float64(len(images)))
	return images, nil
}

// widthLimit is the pixel width a page widthPts points wide may be
// downscaled to. The cap never takes a page below MinDPI.
func (r *Rasterizer) widthLimit(widthPts float64) int {
	if r.maxPixelWidth <= 0 {
		return 0
	}
	floor := int(math.Ceil(widthPts * config.MinDPI / 72))
	return max(r.maxPixelWidth, floor)
}

func openPDF(data []byte) (*model.PdfReader, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}

	encrypted, err := reader.IsEncrypted()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}
	if encrypted {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil || !ok {
			return nil, fmt.Errorf("%w: encrypted document", domain.ErrUnreadableDocument)
		}
	}
	return reader, nil
}

// downscale shrinks img to maxWidth keeping the aspect ratio. Zero disables it.
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
