package doctext

import (
	"context"
	"errors"
	"testing"

	"syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/errs"
)

type fakePages struct {
	pages []string
	fail  map[int]bool
	panic map[int]bool
}

func (f fakePages) NumPage() int { return len(f.pages) }

func (f fakePages) PageText(index int) (string, error) {
	if f.panic[index] {
		panic("broken content stream")
	}
	if f.fail[index] {
		return "", errors.New("bad font")
	}
	return f.pages[index-1], nil
}

func newFakeExtractor(pages fakePages) *Extractor {
	return &Extractor{
		open:     func([]byte) (pageReader, error) { return pages, nil },
		minRunes: 10,
	}
}

func TestExtractTextJoinsPages(t *testing.T) {
	extractor := newFakeExtractor(fakePages{
		pages: []string{"CPE 380 Syllabus\n", "Midterm Exam 2024-10-01", "Final 2024-12-10\r\n"},
	})

	text, err := extractor.ExtractText(context.Background(), []byte("%PDF-1.7 ..."))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	want := "CPE 380 Syllabus\nMidterm Exam 2024-10-01\nFinal 2024-12-10"
	if text != want {
		t.Fatalf("ExtractText() = %q, want %q", text, want)
	}
}

func TestExtractTextSkipsBrokenPages(t *testing.T) {
	extractor := newFakeExtractor(fakePages{
		pages: []string{"Homework 1 due 2024-09-05", "ignored", "ignored too"},
		fail:  map[int]bool{2: true},
		panic: map[int]bool{3: true},
	})

	text, err := extractor.ExtractText(context.Background(), []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "Homework 1 due 2024-09-05" {
		t.Fatalf("ExtractText() = %q", text)
	}
}

func TestExtractTextNoText(t *testing.T) {
	testCases := []struct {
		name      string
		extractor *Extractor
		data      []byte
	}{
		{
			name:      "image only pdf",
			extractor: newFakeExtractor(fakePages{pages: []string{"", "  "}}),
			data:      []byte("%PDF-1.7"),
		},
		{
			name: "unreadable pdf",
			extractor: &Extractor{
				open:     func([]byte) (pageReader, error) { return nil, errors.New("xref missing") },
				minRunes: 10,
			},
			data: []byte("%PDF-1.7"),
		},
		{
			name:      "binary blob",
			extractor: NewExtractor(0),
			data:      []byte{0xff, 0xfe, 0x00, 0x81},
		},
		{
			name:      "short text file",
			extractor: NewExtractor(0),
			data:      []byte("tiny"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.extractor.ExtractText(context.Background(), tc.data)
			if !errors.Is(err, syllabus.ErrNoTextFound) {
				t.Fatalf("ExtractText() error = %v, want ErrNoTextFound", err)
			}
		})
	}
}

func TestExtractTextPassesPlainText(t *testing.T) {
	text, err := NewExtractor(0).ExtractText(context.Background(), []byte("  Quiz 1 on 2024-09-12 in class  \n"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if text != "Quiz 1 on 2024-09-12 in class" {
		t.Fatalf("ExtractText() = %q", text)
	}
}

func TestExtractTextMalformedPDFCarriesStack(t *testing.T) {
	_, err := NewExtractor(0).ExtractText(context.Background(), []byte("%PDF-1.7\nno cross reference table here"))
	if !errors.Is(err, syllabus.ErrNoTextFound) {
		t.Fatalf("ExtractText() error = %v, want ErrNoTextFound", err)
	}
	var stackErr *errs.StackError
	if !errors.As(err, &stackErr) || len(stackErr.Stack()) == 0 {
		t.Fatalf("ExtractText() error = %v, want a stack", err)
	}
}
