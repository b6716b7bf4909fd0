package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aeropulse/aeropulse/internal/logging"
)

// ReportError is the terminal failure: both generators failed.
type ReportError struct {
	Primary  error
	Fallback error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("generating report: %v (fallback: %v)", e.Primary, e.Fallback)
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *ReportError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// Result describes one persisted report.
type Result struct {
	Path      string
	Generator string
	Pages     int
	// PrimaryErr is why the fallback was used, nil when it was not.
	PrimaryErr error
}

// Pipeline runs the primary generator, falls back to the simplified one, and
// saves the document.
type Pipeline struct {
	Primary   Generator
	Fallback  Generator
	OutputDir string
	Log       *logging.Logger
}

// NewPipeline wires the two standard generators.
func NewPipeline(title, outputDir string, log *logging.Logger) *Pipeline {
	return &Pipeline{
		Primary:   &Primary{Title: title, Log: log},
		Fallback:  &Simple{Title: title, Log: log},
		OutputDir: outputDir,
		Log:       log,
	}
}

// Export renders and saves a report. The only error returned for rendering
// is *ReportError; saving failures are wrapped as is.
func (p *Pipeline) Export(ctx context.Context, in Input) (*Result, error) {
	doc, primaryErr := render(ctx, p.Primary, in)
	if primaryErr != nil {
		p.Log.Printf("[REPORT] %s generator failed, falling back: %v", name(p.Primary), primaryErr)

		var fallbackErr error
		doc, fallbackErr = render(ctx, p.Fallback, in)
		if fallbackErr != nil {
			p.Log.Printf("[REPORT] %s generator failed: %v", name(p.Fallback), fallbackErr)
			return nil, &ReportError{Primary: primaryErr, Fallback: fallbackErr}
		}
	}

	path := filepath.Join(p.OutputDir, Filename(in.Patient, in.GeneratedAt))
	if err := save(path, doc); err != nil {
		return nil, err
	}

	p.Log.Printf("[REPORT] Saved %s (%s, %d pages)", path, doc.Generator, doc.Pages)
	return &Result{
		Path:       path,
		Generator:  doc.Generator,
		Pages:      doc.Pages,
		PrimaryErr: primaryErr,
	}, nil
}

// render calls g, converting a panic into an error.
func render(ctx context.Context, g Generator, in Input) (doc *Document, err error) {
	if g == nil {
		return nil, errors.New("no generator configured")
	}
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%s generator panicked: %v", g.Name(), r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err = g.Render(ctx, in)
	if err == nil && doc == nil {
		err = fmt.Errorf("%s generator returned no document", g.Name())
	}
	return doc, err
}

func save(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func name(g Generator) string {
	if g == nil {
		return "<nil>"
	}
	return g.Name()
}
