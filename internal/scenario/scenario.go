package scenario

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tldr-it-stepankutaj/basicskit/internal/app"
	"github.com/tldr-it-stepankutaj/basicskit/internal/host"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
)

// Scenario is a scripted sequence of module runs.
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// Step launches one module and replays events into it. The run is finished
// at the end of the step if the events left it live.
type Step struct {
	ID        string  `yaml:"id,omitempty" json:"id,omitempty"`
	Module    string  `yaml:"module,omitempty" json:"module,omitempty"`
	Index     *int    `yaml:"index,omitempty" json:"index,omitempty"`
	Events    []Event `yaml:"events,omitempty" json:"events,omitempty"`
	OnFailure string  `yaml:"on_failure,omitempty" json:"on_failure,omitempty"` // continue, stop
}

// Step statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPartial   = "partial"
)

// StepResult holds the outcome of one step.
type StepResult struct {
	StepID    string        `json:"step_id"`
	Module    string        `json:"module"`
	RunID     string        `json:"run_id,omitempty"`
	Status    string        `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Events    int           `json:"events"`
	Ignored   int           `json:"ignored,omitempty"`
	Entries   []string      `json:"entries,omitempty"`
	Snapshot  string        `json:"snapshot,omitempty"`
	Recorded  uint64        `json:"recorded"`
	Evicted   uint64        `json:"evicted,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ExecutionReport summarizes a scenario execution.
type ExecutionReport struct {
	Scenario       string        `json:"scenario"`
	Description    string        `json:"description,omitempty"`
	Session        string        `json:"session,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	Status         string        `json:"status"`
	TotalSteps     int           `json:"total_steps"`
	CompletedSteps int           `json:"completed_steps"`
	FailedSteps    int           `json:"failed_steps"`
	Steps          []*StepResult `json:"steps"`
	// Path is where the report was saved; empty when not saved.
	Path string `json:"-"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	sc.assignIDs()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Save writes a scenario as YAML.
func Save(sc *Scenario, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the scenario shape without touching a registry.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario %s has no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		if st.Module == "" && st.Index == nil {
			return fmt.Errorf("step %d: module or index is required", i+1)
		}
		if st.Module != "" && st.Index != nil {
			return fmt.Errorf("step %d: module and index are mutually exclusive", i+1)
		}
		switch st.OnFailure {
		case "", "stop", "continue":
		default:
			return fmt.Errorf("step %d: unknown on_failure %q", i+1, st.OnFailure)
		}
		for j, ev := range st.Events {
			if err := ev.Validate(); err != nil {
				return fmt.Errorf("step %d event %d: %w", i+1, j+1, err)
			}
		}
	}
	return nil
}

func (sc *Scenario) assignIDs() {
	for i := range sc.Steps {
		if sc.Steps[i].ID == "" {
			sc.Steps[i].ID = fmt.Sprintf("step_%d", i+1)
		}
	}
}

// Execute runs every step in order against reg through h. A failed step stops
// the scenario unless it is marked on_failure: continue. The report is saved
// under the workspace reports/ directory when a workspace is set.
func Execute(ctx app.Context, reg *modules.Registry, h *host.Host, sc *Scenario) (*ExecutionReport, error) {
	sc.assignIDs()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	out := ctx.Out
	if out == nil {
		out = io.Discard
	}
	log := ctx.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("scenario", sc.Name)

	report := &ExecutionReport{
		Scenario:    sc.Name,
		Description: sc.Description,
		Session:     ctx.Session,
		StartTime:   time.Now(),
		TotalSteps:  len(sc.Steps),
	}

	fmt.Fprintf(out, "\n╔══════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(out, "║  Scenario: %-50s║\n", sc.Name)
	fmt.Fprintf(out, "║  Steps: %-52d║\n", len(sc.Steps))
	fmt.Fprintf(out, "╚══════════════════════════════════════════════════════════════╝\n\n")

	var stopErr error
	for _, st := range sc.Steps {
		result := executeStep(reg, h, st)
		report.Steps = append(report.Steps, result)

		fmt.Fprintf(out, "┌─ Step: %s (%s)\n", st.ID, result.Module)
		if result.Status == StatusFailed {
			fmt.Fprintf(out, "│  Status: Failed - %s\n", result.Error)
			log.Warn("scenario.step.failed", "step", st.ID, "module", result.Module, "error", result.Error)
		} else {
			fmt.Fprintf(out, "│  Status: Completed (%d entries)\n", result.Recorded)
			for _, line := range strings.Split(result.Snapshot, "\n") {
				fmt.Fprintf(out, "│    %s\n", line)
			}
			log.Info("scenario.step.completed", "step", st.ID, "module", result.Module, "recorded", result.Recorded)
		}
		fmt.Fprintf(out, "└─────────────────────────────────────────\n\n")

		if result.Status == StatusFailed && st.OnFailure != "continue" {
			stopErr = fmt.Errorf("step %s failed: %s", st.ID, result.Error)
			break
		}
	}

	finalize(report)

	if ctx.Workspace != nil {
		ts := ctx.Now
		if ts.IsZero() {
			ts = report.StartTime
		}
		path := ctx.Workspace.Path("reports", fmt.Sprintf("scenario-%s-%s.json", sanitizeFilename(sc.Name), ts.Format("20060102-150405")))
		if err := saveReport(report, path); err != nil {
			fmt.Fprintf(out, "[!] Failed to save report: %v\n", err)
			log.Error("scenario.report.save_failed", "path", path, "error", err)
		} else {
			report.Path = path
			fmt.Fprintf(out, "[+] Report saved: %s\n", path)
		}
	}

	return report, stopErr
}

func executeStep(reg *modules.Registry, h *host.Host, st Step) *StepResult {
	result := &StepResult{
		StepID:    st.ID,
		Module:    st.Module,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}()

	var (
		req modules.ActivationRequest
		err error
	)
	if st.Index != nil {
		req, err = reg.Select(*st.Index)
	} else {
		req, err = reg.Resolve(st.Module)
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	result.Module = req.Name()

	run, err := h.Launch(req)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}
	result.RunID = run.ID

	var errs []error
	for i, ev := range st.Events {
		result.Events++
		if err := Apply(run, ev); err != nil {
			if errors.Is(err, ErrIgnored) {
				result.Ignored++
				continue
			}
			errs = append(errs, fmt.Errorf("event %d (%s): %w", i+1, ev, err))
		}
	}
	if err := run.Finish(); err != nil {
		errs = append(errs, fmt.Errorf("finish: %w", err))
	}

	for _, e := range run.Entries() {
		result.Entries = append(result.Entries, e.Text)
	}
	result.Snapshot = run.Snapshot()
	result.Recorded = run.Recorded()
	result.Evicted = run.Evicted()

	result.Status = StatusCompleted
	if err := errors.Join(errs...); err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
	}
	return result
}

// ErrIgnored is returned by Apply when the module does not consume pointer input.
var ErrIgnored = errors.New("event not consumed by module")

// Apply delivers one event to run.
func Apply(run *host.Run, ev Event) error {
	if ev.Pointer != nil {
		p, err := ev.Pointer.Pointer()
		if err != nil {
			return err
		}
		if !run.Pointer(p) {
			return ErrIgnored
		}
		return nil
	}
	switch ev.Lifecycle {
	case LifecyclePause:
		return run.Pause()
	case LifecycleResume:
		return run.Resume()
	case LifecycleFinish:
		return run.Finish()
	}
	return fmt.Errorf("unknown lifecycle notification %q", ev.Lifecycle)
}

func finalize(report *ExecutionReport) {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	report.Status = StatusCompleted
	for _, r := range report.Steps {
		switch r.Status {
		case StatusCompleted:
			report.CompletedSteps++
		case StatusFailed:
			report.FailedSteps++
			report.Status = StatusPartial
		}
	}
	if report.FailedSteps > 0 && report.CompletedSteps == 0 {
		report.Status = StatusFailed
	}
}

func saveReport(report *ExecutionReport, path string) error {
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
	if err := enc.Encode(report); err != nil {
		return err
	}
	return w.Flush()
}

// LoadReport reads a saved execution report.
func LoadReport(path string) (*ExecutionReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r ExecutionReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	r.Path = path
	return &r, nil
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-")
	return strings.ToLower(replacer.Replace(name))
}

// Predefined returns a copy of a built-in scenario.
func Predefined(name string) (*Scenario, bool) {
	sc, ok := predefined[name]
	if !ok {
		return nil, false
	}
	cp := *sc
	cp.Steps = append([]Step(nil), sc.Steps...)
	return &cp, true
}

// ListPredefined returns built-in scenario names in sorted order.
func ListPredefined() []string {
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intp(i int) *int { return &i }

func events(lines ...string) []Event {
	out := make([]Event, 0, len(lines))
	for _, l := range lines {
		ev, err := ParseEvent(l)
		if err != nil {
			panic(err)
		}
		out = append(out, ev)
	}
	return out
}

var predefined = map[string]*Scenario{
	"lifecycle": {
		Name:        "lifecycle",
		Description: "Launch, background, foreground and dismiss the lifecycle demo",
		Steps: []Step{
			{ID: "lifecycle", Module: "LifeCycleTest", Events: events("pause", "resume", "finish")},
		},
	},
	"single-touch": {
		Name:        "single-touch",
		Description: "Drag one pointer across the touch demo, then send an unknown action code",
		Steps: []Step{
			{ID: "drag", Module: "SingleTouchTest", Events: events(
				"down 10.5 20", "move 11 21", "move 12.25 22", "up 12.25 22",
			)},
			{ID: "unknown-code", Module: "SingleTouchTest", Events: events("pointer 99 1 2")},
		},
	},
	"catalog-tour": {
		Name:        "catalog-tour",
		Description: "Open every catalog entry by position and try a module that does not exist",
		Steps: []Step{
			{ID: "first", Index: intp(0)},
			{ID: "second", Index: intp(1), Events: events("down 1 1", "up 1 1")},
			{ID: "missing", Module: "MultiTouchTest", OnFailure: "continue"},
		},
	},
}
