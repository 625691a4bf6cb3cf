// Package pdfsource rasterizes PDF pages into images so the OCR pipeline can
// treat a PDF page like any other Image input.
package pdfsource

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoPages is returned when a PDF contains no extractable page imagery.
var ErrNoPages = errors.New("pdfsource: no pages extracted")

// RasterizePage extracts the embedded raster content of the given 1-based
// page number from a PDF file and returns it as a decoded image.Image.
//
// pdfcpu's extractor pulls embedded images rather than rendering the page,
// which is sufficient for the scanned-document inputs this pipeline targets.
func RasterizePage(path string, pageNum int) (image.Image, error) {
	if pageNum < 1 {
		return nil, fmt.Errorf("pdfsource: invalid page number %d", pageNum)
	}

	tempDir, err := os.MkdirTemp("", "oar-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("pdfsource: create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	pageSel := []string{fmt.Sprintf("%d", pageNum)}
	if err := api.ExtractImagesFile(path, tempDir, pageSel, nil); err != nil {
		return nil, fmt.Errorf("pdfsource: extract page %d: %w", pageNum, err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: read temp dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, ErrNoPages
	}
	sort.Strings(names)

	f, err := os.Open(filepath.Join(tempDir, names[0])) //nolint:gosec // caller-provided path
	if err != nil {
		return nil, fmt.Errorf("pdfsource: open extracted image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pdfsource: decode extracted image: %w", err)
	}
	return img, nil
}

// PageCount returns the number of pages in the PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided path
	if err != nil {
		return 0, fmt.Errorf("pdfsource: open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	ctx, err := api.ReadContext(f, nil)
	if err != nil {
		return 0, fmt.Errorf("pdfsource: read pdf: %w", err)
	}
	return ctx.PageCount, nil
}
