package syllabus

import (
	"errors"
	"time"

	"github.com/google/uuid"

	domainsyllabus "syllabuscal/internal/domain/syllabus"
	"syllabuscal/internal/ports"
)

const (
	DefaultExtractionTimeout = 90 * time.Second
	DefaultCacheTTL          = 7 * 24 * time.Hour
)

var errRepositoryRequired = errors.New("event repository is required")

type Options struct {
	// ExtractionTimeout bounds a single understanding call.
	ExtractionTimeout time.Duration
	// CacheTTL is how long a successful understanding response is reused.
	CacheTTL time.Duration
	// MinTextRunes is the least amount of text worth sending for extraction.
	MinTextRunes int
	// MaxMarks caps indicator marks per month cell.
	MaxMarks int
}

type Dependencies struct {
	Events       ports.EventRepository
	Uploads      ports.UploadRepository
	UnitOfWork   ports.UnitOfWork
	Cache        ports.Cache
	Fetcher      ports.DocumentFetcher
	Text         ports.TextExtractor
	Understander ports.Understander
}

type Service struct {
	events       ports.EventRepository
	uploads      ports.UploadRepository
	uow          ports.UnitOfWork
	cache        ports.Cache
	fetcher      ports.DocumentFetcher
	text         ports.TextExtractor
	understander ports.Understander
	opts         Options

	now   func() time.Time
	newID func() string
}

// NewService wires the syllabus pipeline. Cache and upload history are optional.
func NewService(deps Dependencies, opts Options) *Service {
	if opts.ExtractionTimeout <= 0 {
		opts.ExtractionTimeout = DefaultExtractionTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.MinTextRunes <= 0 {
		opts.MinTextRunes = domainsyllabus.MinTextRunes
	}
	return &Service{
		events:       deps.Events,
		uploads:      deps.Uploads,
		uow:          deps.UnitOfWork,
		cache:        deps.Cache,
		fetcher:      deps.Fetcher,
		text:         deps.Text,
		understander: deps.Understander,
		opts:         opts,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

type ProcessInput struct {
	FileURL        string
	Owner          string
	SourceDocument string
	CourseName     string
}

type ProcessResult struct {
	BatchID string
	// Courses lists the distinct course labels of the saved events.
	Courses []string
	Events  []domainsyllabus.Event
	// Extracted counts raw items returned by the understander.
	Extracted int
	// Dropped counts items rejected by validation.
	Dropped int
	// Duplicates counts in-batch duplicates removed before saving.
	Duplicates int
}

// Saved is the number of persisted events.
func (r ProcessResult) Saved() int {
	return len(r.Events)
}
