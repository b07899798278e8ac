package report

import (
	"context"
	"fmt"
	"io"

	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/storage/archive"
	"go.uber.org/zap"
)

// DefaultFile is the fixed artifact name, overwritten on every run
const DefaultFile = "latest.txt"

// Publisher writes a rendered report to the console and to storage
type Publisher struct {
	out     io.Writer
	primary archive.Storage
	mirror  archive.Storage
	file    string
	logger  *zap.Logger
}

// PublisherOption configures a Publisher
type PublisherOption func(*Publisher)

// WithStorage sets the primary artifact storage. Without it only the console
// receives the report.
func WithStorage(s archive.Storage) PublisherOption {
	return func(p *Publisher) { p.primary = s }
}

// WithMirror adds a best-effort copy, e.g. an S3 bucket
func WithMirror(s archive.Storage) PublisherOption {
	return func(p *Publisher) { p.mirror = s }
}

// WithFile overrides the artifact name
func WithFile(name string) PublisherOption {
	return func(p *Publisher) {
		if name != "" {
			p.file = name
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// NewPublisher creates a publisher writing console output to out
func NewPublisher(out io.Writer, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		out:    out,
		file:   DefaultFile,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish renders r once and writes the same bytes everywhere. A failed
// mirror write is logged; a failed console or primary write is returned.
func (p *Publisher) Publish(ctx context.Context, r Report) (string, error) {
	text := Render(r)
	data := []byte(text)

	if _, err := p.out.Write(data); err != nil {
		return text, core.WrapError(core.ErrReportWrite, fmt.Errorf("console: %w", err))
	}

	if p.primary != nil {
		if err := p.primary.Write(ctx, p.file, data); err != nil {
			return text, core.WrapError(core.ErrReportWrite, err)
		}
		p.logger.Debug("report written", zap.String("file", p.file), zap.Int("bytes", len(data)))
	}

	if p.mirror != nil {
		if err := p.mirror.Write(ctx, p.file, data); err != nil {
			p.logger.Warn("report mirror failed", zap.String("file", p.file), zap.Error(err))
		}
	}

	return text, nil
}
