package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/darukaearth/rag-server/models"
)

// Page is extracted text with its 1-based page number. Plain text files come
// back as a single page numbered 0.
type Page struct {
	Number  int
	Content string
}

// InitPDFLicense registers the UniPDF metered license key. Must run once
// before any extraction; a missing key makes PDF processing fail.
func InitPDFLicense(key string) error {
	if key == "" {
		return nil
	}
	return license.SetMeteredKey(key)
}

// ExtractPDF reads every page of a PDF. Corrupt or encrypted input surfaces
// as an ingestion error, never a crash of the caller.
func ExtractPDF(rs io.ReadSeeker) ([]Page, error) {
	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read pdf: %v", models.ErrIngestion, err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("%w: could not get page count: %v", models.ErrIngestion, err)
	}

	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("%w: could not get page %d: %v", models.ErrIngestion, i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("%w: could not create extractor for page %d: %v", models.ErrIngestion, i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("%w: could not extract text from page %d: %v", models.ErrIngestion, i, err)
		}
		pages = append(pages, Page{Number: i, Content: text})
	}
	return pages, nil
}

// ExtractFile reads a file from disk and returns its pages. Handles .txt and
// .md directly and .pdf through ExtractPDF.
func ExtractFile(path string) ([]Page, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrIngestion, err)
		}
		return []Page{{Number: 0, Content: string(content)}}, nil
	case ".pdf":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrIngestion, err)
		}
		defer f.Close()
		return ExtractPDF(f)
	default:
		return nil, fmt.Errorf("%w: unsupported file type: %s", models.ErrIngestion, ext)
	}
}
