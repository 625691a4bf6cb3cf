package pdfsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRasterizePageRejectsNonPositivePageNumber(t *testing.T) {
	_, err := RasterizePage("whatever.pdf", 0)
	assert.Error(t, err)
}

func TestRasterizePageMissingFile(t *testing.T) {
	_, err := RasterizePage("/nonexistent/path/to/file.pdf", 1)
	assert.Error(t, err)
}

func TestPageCountMissingFile(t *testing.T) {
	_, err := PageCount("/nonexistent/path/to/file.pdf")
	assert.Error(t, err)
}
