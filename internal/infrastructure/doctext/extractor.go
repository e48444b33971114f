package doctext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"syllabuscal/internal/bootstrap/logging"
	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
	"syllabuscal/internal/ports"
)

var pdfMagic = []byte("%PDF-")

// pageReader is the slice of a parsed PDF the extractor needs.
type pageReader interface {
	NumPage() int
	PageText(index int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p pdfPages) NumPage() int { return p.reader.NumPage() }

func (p pdfPages) PageText(index int) (string, error) {
	page := p.reader.Page(index)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// Extractor reads text out of PDF documents. Plain UTF-8 text documents pass
// through unchanged.
type Extractor struct {
	open     func(data []byte) (pageReader, error)
	minRunes int
}

var _ ports.TextExtractor = (*Extractor)(nil)

func NewExtractor(minRunes int) *Extractor {
	if minRunes <= 0 {
		minRunes = syllabus.MinTextRunes
	}
	return &Extractor{open: openPDF, minRunes: minRunes}
}

// ExtractText joins page texts with newlines. Pages that fail to decode are
// skipped; if nothing usable remains the result is syllabus.ErrNoTextFound.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.doctext"))

	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: unsupported document format", syllabus.ErrNoTextFound)
		}
		text := syllabus.JoinPages([]string{string(data)})
		if err := syllabus.CheckText(text, e.minRunes); err != nil {
			return "", err
		}
		return text, nil
	}

	reader, err := e.open(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", syllabus.ErrNoTextFound, err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	var pageErrs []error
	for index := 1; index <= total; index++ {
		if err := ctx.Err(); err != nil {
			return "", errs.Wrap(err, "check context")
		}
		text, err := safePageText(reader, index)
		if err != nil {
			pageErrs = append(pageErrs, err)
			logging.Debug(logCtx, "skip unreadable page", slog.Int("page", index), slog.Any("err", errs.Loggable(err)))
			continue
		}
		pages = append(pages, text)
	}

	text := syllabus.JoinPages(pages)
	logging.Info(logCtx, "document text extracted",
		slog.Int("pages", total),
		slog.Int("skipped_pages", len(pageErrs)),
		slog.Int("runes", utf8.RuneCountInString(text)),
	)
	if err := syllabus.CheckText(text, e.minRunes); err != nil {
		// Page failures explain why a text layer came out empty.
		return "", errs.Join("extract pdf text", append([]error{err}, pageErrs...)...)
	}
	return text, nil
}

func openPDF(data []byte) (reader pageReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader, err = nil, errs.WithStack(fmt.Errorf("malformed pdf: %v", r))
		}
	}()
	parsed, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errs.WithStack(errs.Wrap(err, "open pdf"))
	}
	return pdfPages{reader: parsed}, nil
}

func safePageText(reader pageReader, index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", index, r)
		}
	}()
	text, err = reader.PageText(index)
	return strings.ToValidUTF8(text, ""), err
}
