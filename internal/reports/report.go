package reports

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/tldr-it-stepankutaj/basicskit/internal/scenario"
)

// Report aggregates scenario executions found in a workspace.
type Report struct {
	Title      string                      `json:"title"`
	Summary    string                      `json:"summary"`
	Executions []*scenario.ExecutionReport `json:"executions"`
	Modules    []ModuleStats               `json:"modules"`
	Statistics Statistics                  `json:"statistics"`
	Metadata   Metadata                    `json:"metadata"`
}

// ModuleStats totals the steps that ran one module.
type ModuleStats struct {
	Module   string `json:"module"`
	Runs     int    `json:"runs"`
	Failed   int    `json:"failed"`
	Recorded uint64 `json:"recorded"`
	Evicted  uint64 `json:"evicted"`
}

// Statistics contains report statistics.
type Statistics struct {
	Scenarios      int           `json:"scenarios"`
	Steps          int           `json:"steps"`
	CompletedSteps int           `json:"completed_steps"`
	FailedSteps    int           `json:"failed_steps"`
	Entries        uint64        `json:"entries"`
	TotalDuration  time.Duration `json:"total_duration"`
}

// Metadata contains report metadata.
type Metadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	GeneratedBy   string    `json:"generated_by"`
	ToolVersion   string    `json:"tool_version"`
	WorkspacePath string    `json:"workspace_path"`
}

// Builder helps construct reports.
type Builder struct {
	report *Report
}

// NewBuilder creates a new report builder.
func NewBuilder() *Builder {
	return &Builder{report: &Report{Executions: make([]*scenario.ExecutionReport, 0)}}
}

// SetTitle sets the report title.
func (b *Builder) SetTitle(title string) *Builder {
	b.report.Title = title
	return b
}

// AddExecution adds one scenario execution.
func (b *Builder) AddExecution(r *scenario.ExecutionReport) *Builder {
	if r != nil {
		b.report.Executions = append(b.report.Executions, r)
	}
	return b
}

// SetMetadata sets the report metadata.
func (b *Builder) SetMetadata(meta Metadata) *Builder {
	b.report.Metadata = meta
	return b
}

// Build finalizes and returns the report.
func (b *Builder) Build() *Report {
	r := b.report

	sort.SliceStable(r.Executions, func(i, j int) bool {
		return r.Executions[i].StartTime.Before(r.Executions[j].StartTime)
	})

	byModule := make(map[string]*ModuleStats)
	r.Statistics = Statistics{Scenarios: len(r.Executions)}
	for _, ex := range r.Executions {
		r.Statistics.TotalDuration += ex.Duration
		for _, st := range ex.Steps {
			r.Statistics.Steps++
			ms, ok := byModule[st.Module]
			if !ok {
				ms = &ModuleStats{Module: st.Module}
				byModule[st.Module] = ms
			}
			ms.Runs++
			if st.Status == scenario.StatusFailed {
				r.Statistics.FailedSteps++
				ms.Failed++
			} else {
				r.Statistics.CompletedSteps++
			}
			ms.Recorded += st.Recorded
			ms.Evicted += st.Evicted
			r.Statistics.Entries += st.Recorded
		}
	}

	r.Modules = make([]ModuleStats, 0, len(byModule))
	for _, ms := range byModule {
		r.Modules = append(r.Modules, *ms)
	}
	sort.Slice(r.Modules, func(i, j int) bool { return r.Modules[i].Module < r.Modules[j].Module })

	if r.Title == "" {
		r.Title = "Diagnostic Session Report"
	}
	if r.Summary == "" {
		r.Summary = generateSummary(r)
	}
	if r.Metadata.GeneratedAt.IsZero() {
		r.Metadata.GeneratedAt = time.Now()
	}
	if r.Metadata.GeneratedBy == "" {
		r.Metadata.GeneratedBy = "basicskit"
	}
	return r
}

func generateSummary(r *Report) string {
	if r.Statistics.Scenarios == 0 {
		return "No scenario executions were found in the workspace."
	}
	s := fmt.Sprintf("%d scenario execution(s) ran %d step(s) and logged %d entries.",
		r.Statistics.Scenarios, r.Statistics.Steps, r.Statistics.Entries)
	if r.Statistics.FailedSteps > 0 {
		s += fmt.Sprintf(" %d step(s) failed.", r.Statistics.FailedSteps)
	}
	return s
}

// ExportJSON exports the report as JSON.
func (r *Report) ExportJSON(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return err
	}
	return w.Flush()
}

const markdownTemplate = `# {{ .Title }}

**Generated:** {{ .Metadata.GeneratedAt.Format "2006-01-02 15:04:05" }}
**Generated By:** {{ .Metadata.GeneratedBy }}{{ if .Metadata.ToolVersion }} {{ .Metadata.ToolVersion }}{{ end }}

---

## Summary

{{ .Summary }}

## Statistics

| Metric | Value |
|--------|-------|
| Scenarios | {{ .Statistics.Scenarios }} |
| Steps | {{ .Statistics.Steps }} |
| Completed | {{ .Statistics.CompletedSteps }} |
| Failed | {{ .Statistics.FailedSteps }} |
| Entries logged | {{ .Statistics.Entries }} |
{{ if .Modules }}
## Modules

| Module | Runs | Failed | Recorded | Evicted |
|--------|------|--------|----------|---------|
{{- range .Modules }}
| {{ .Module }} | {{ .Runs }} | {{ .Failed }} | {{ .Recorded }} | {{ .Evicted }} |
{{- end }}
{{ end }}
{{- range .Executions }}
---

## Scenario: {{ .Scenario }}
{{ if .Description }}
{{ .Description }}
{{ end }}
**Status:** {{ .Status }} ({{ .CompletedSteps }}/{{ .TotalSteps }} steps completed)
{{ range .Steps }}
### {{ .StepID }}: {{ .Module }}

**Status:** {{ .Status }}{{ if .Error }}: {{ .Error }}{{ end }}
{{ if .Snapshot }}
` + "```" + `
{{ .Snapshot }}
` + "```" + `
{{ end }}{{ end }}{{ end }}`

var mdTmpl = template.Must(template.New("report").Parse(markdownTemplate))

// ExportMarkdown exports the report as Markdown.
func (r *Report) ExportMarkdown(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return mdTmpl.Execute(f, r)
}

// RenderToString renders the report to a string in the specified format.
func (r *Report) RenderToString(format string) (string, error) {
	var buf bytes.Buffer

	switch format {
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return "", err
		}
	case "md", "markdown":
		if err := mdTmpl.Execute(&buf, r); err != nil {
			return "", err
		}
	case "text":
		buf.WriteString(fmt.Sprintf("SESSION REPORT: %s\n", r.Title))
		buf.WriteString(strings.Repeat("=", 60) + "\n\n")
		buf.WriteString(fmt.Sprintf("Generated: %s\n", r.Metadata.GeneratedAt.Format(time.RFC3339)))
		buf.WriteString(fmt.Sprintf("Scenarios: %d, Steps: %d, Failed: %d\n", r.Statistics.Scenarios, r.Statistics.Steps, r.Statistics.FailedSteps))
		for _, ex := range r.Executions {
			buf.WriteString(fmt.Sprintf("\n[%s] %s\n", strings.ToUpper(ex.Status), ex.Scenario))
			for _, st := range ex.Steps {
				buf.WriteString(fmt.Sprintf("    %s %s: %s\n", st.StepID, st.Module, st.Status))
			}
		}
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	return buf.String(), nil
}
