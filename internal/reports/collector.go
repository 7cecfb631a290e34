package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tldr-it-stepankutaj/basicskit/internal/scenario"
	"github.com/tldr-it-stepankutaj/basicskit/internal/workspace"
	"github.com/tldr-it-stepankutaj/basicskit/pkg/version"
)

// Collector aggregates scenario execution reports from a workspace.
type Collector struct {
	ws workspace.Handle
}

// NewCollector creates a new report collector.
func NewCollector(ws workspace.Handle) *Collector {
	return &Collector{ws: ws}
}

// CollectAll reads every reports/scenario-*.json file and builds a report.
// Unreadable files are skipped and returned as warnings.
func (c *Collector) CollectAll() (*Report, []error, error) {
	pattern := c.ws.Path("reports", "scenario-*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list reports: %w", err)
	}

	builder := NewBuilder()
	var warnings []error
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			continue
		}
		r, err := scenario.LoadReport(p)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		builder.AddExecution(r)
	}

	builder.SetTitle("Diagnostic Session Report")
	builder.SetMetadata(Metadata{
		GeneratedAt:   time.Now(),
		GeneratedBy:   "basicskit",
		ToolVersion:   version.Version,
		WorkspacePath: c.ws.Root,
	})
	return builder.Build(), warnings, nil
}

// DefaultOutput returns the export path for format under reports/.
func (c *Collector) DefaultOutput(format string, now time.Time) string {
	ext := "md"
	if strings.EqualFold(format, "json") {
		ext = "json"
	}
	return c.ws.Path("reports", fmt.Sprintf("session-report-%s.%s", now.Format("20060102-150405"), ext))
}
