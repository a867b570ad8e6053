// Package pdfcpu checks PDF files before extraction using github.com/pdfcpu/pdfcpu.
package pdfcpu

import (
	"context"
	"os"

	"github.com/fwojciec/aptnotice"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Ensure Inspector implements aptnotice.PDFInspector at compile time.
var _ aptnotice.PDFInspector = (*Inspector)(nil)

// Inspector validates PDFs in relaxed mode and reports their page count.
type Inspector struct {
	conf *model.Configuration
}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// Inspect returns ENOTFOUND for a missing file and EINVALID for a file
// that is not a readable PDF.
func (i *Inspector) Inspect(ctx context.Context, path string) (*aptnotice.PDFInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, aptnotice.Errorf(aptnotice.ENOTFOUND, "pdf %q not found", path)
		}
		return nil, err
	}

	if err := api.ValidateFile(path, i.conf); err != nil {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "invalid pdf %q: %v", path, err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "unreadable pdf %q: %v", path, err)
	}

	return &aptnotice.PDFInfo{Path: path, PageCount: pages}, nil
}
