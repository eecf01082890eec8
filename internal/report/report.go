// Package report turns a session history into a coaching report in
// markdown, and optionally renders it to PDF.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cognitio-libera/cognitio/internal/prompt"
	"github.com/cognitio-libera/cognitio/internal/record"
)

// ErrNoHistory is returned when there is nothing to report on.
var ErrNoHistory = errors.New("no history to report on")

// FallbackText is returned alongside the error when the model call fails.
const FallbackText = "Could not generate report due to an error."

// Purpose is the model call label for report requests.
const Purpose = "report"

// File names written by WriteFiles.
const (
	MarkdownFile = "progress_report.md"
	PDFFile      = "progress_report.pdf"
)

// Completer sends a free-form prompt and returns the completion text.
// *practice.Coach implements it.
type Completer interface {
	Complete(ctx context.Context, purpose, text string) (string, error)
}

// Generator produces progress reports.
type Generator struct {
	model Completer
}

// NewGenerator creates a Generator backed by model.
func NewGenerator(model Completer) *Generator {
	return &Generator{model: model}
}

// Markdown asks the model for a progress report over entries. On a model
// failure it returns FallbackText together with the error.
func (g *Generator) Markdown(ctx context.Context, entries []record.HistoryEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoHistory
	}

	text, err := prompt.BuildReport(entries)
	if err != nil {
		return "", err
	}

	out, err := g.model.Complete(ctx, Purpose, text)
	if err != nil {
		return FallbackText, fmt.Errorf("generate report: %w", err)
	}
	return out, nil
}

// WriteFiles writes markdown to dir as progress_report.md and, when pdf is
// set, a rendered progress_report.pdf. It returns the paths written.
func WriteFiles(dir, markdown string, pdf bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	mdPath := filepath.Join(dir, MarkdownFile)
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("write markdown report: %w", err)
	}
	paths := []string{mdPath}

	if !pdf {
		return paths, nil
	}

	pdfPath := filepath.Join(dir, PDFFile)
	f, err := os.Create(pdfPath)
	if err != nil {
		return paths, fmt.Errorf("create PDF report: %w", err)
	}
	if err := RenderPDF(markdown, f); err != nil {
		f.Close()
		return paths, err
	}
	if err := f.Close(); err != nil {
		return paths, fmt.Errorf("close PDF report: %w", err)
	}
	return append(paths, pdfPath), nil
}
