// Package report renders the comparison as standalone HTML, PDF and XLSX
// documents.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/poverty-forecast/internal/indicators"
	"github.com/iwvelando/poverty-forecast/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownFormat is returned for a report format that has no renderer.
var ErrUnknownFormat = errors.New("unknown report format")

// Section is one category and its data rows.
type Section struct {
	Category  indicators.Category
	Summaries []indicators.Summary
}

// Report is everything a renderer needs, computed once from a comparator.
type Report struct {
	Title      string
	Generated  time.Time
	Headline   indicators.Headline
	Sections   []Section
	Heatmap    indicators.Heatmap
	Radar      indicators.Radar
	HasActuals bool
}

// Build snapshots the comparator into a report. Header rows are dropped
// from the sections; their category becomes the section title.
func Build(c *indicators.Comparator, title string) (Report, error) {
	if title == "" {
		title = constants.DefaultReportTitle
	}
	headline, err := c.Headline()
	if err != nil {
		return Report{}, fmt.Errorf("failed to build headline: %w", err)
	}

	rep := Report{
		Title:     title,
		Generated: time.Now(),
		Headline:  headline,
		Heatmap:   c.Heatmap(),
		Radar:     c.Radar(),
	}
	for _, cat := range indicators.Categories() {
		section := Section{Category: cat}
		for _, sum := range c.Summaries(cat) {
			if sum.Header {
				continue
			}
			if cmp, ok := sum.Comparison(indicators.Real2024); ok && cmp.Value != nil {
				rep.HasActuals = true
			}
			section.Summaries = append(section.Summaries, sum)
		}
		rep.Sections = append(rep.Sections, section)
	}
	return rep, nil
}

// Scenarios returns the columns shown in every rendering: the real 2024
// column only appears once a value was entered.
func (r Report) Scenarios() []indicators.Scenario {
	scenarios := []indicators.Scenario{indicators.Baseline2022, indicators.Optimistic2024, indicators.Restrictive2024}
	if r.HasActuals {
		scenarios = append(scenarios, indicators.Real2024)
	}
	return scenarios
}

// Render writes the report in the given format.
func Render(w io.Writer, format string, rep Report) error {
	switch format {
	case constants.ReportFormatHTML:
		return HTML(w, rep)
	case constants.ReportFormatPDF:
		return PDF(w, rep)
	case constants.ReportFormatXLSX:
		return XLSX(w, rep)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	switch format {
	case constants.ReportFormatHTML:
		return "text/html; charset=utf-8"
	case constants.ReportFormatPDF:
		return "application/pdf"
	case constants.ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// FileName is the name WriteAll gives a report of the given format.
func FileName(format string) string {
	return "poverty-report." + format
}

// WriteAll renders every format concurrently into dir and returns the
// written paths in the order of formats. A file is only written once its
// rendering succeeded.
func WriteAll(ctx context.Context, dir string, rep Report, formats []string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	paths := make([]string, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		i, format := i, format
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			start := time.Now()
			if err := Render(&buf, format, rep); err != nil {
				return fmt.Errorf("failed to render %s report: %w", format, err)
			}
			path := filepath.Join(dir, FileName(format))
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Debug("report written",
				zap.String("op", "report.WriteAll"),
				zap.String("format", format),
				zap.String("path", path),
				zap.Int("bytes", buf.Len()),
				zap.Duration("duration", time.Since(start)),
			)
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
