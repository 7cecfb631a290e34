package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tldr-it-stepankutaj/basicskit/internal/app"
	"github.com/tldr-it-stepankutaj/basicskit/internal/catalog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/diaglog"
	"github.com/tldr-it-stepankutaj/basicskit/internal/host"
	"github.com/tldr-it-stepankutaj/basicskit/internal/logger"
	"github.com/tldr-it-stepankutaj/basicskit/internal/modules"
	"github.com/tldr-it-stepankutaj/basicskit/internal/reports"
	"github.com/tldr-it-stepankutaj/basicskit/internal/scenario"
	"github.com/tldr-it-stepankutaj/basicskit/internal/trace"
	"github.com/tldr-it-stepankutaj/basicskit/internal/tui"
	"github.com/tldr-it-stepankutaj/basicskit/internal/workspace"
	"github.com/tldr-it-stepankutaj/basicskit/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "basicskit",
	Short: "basicskit: diagnostic module catalog (CLI/TUI)",
	Long:  "basicskit launches small diagnostic modules by name and shows what they log. Use CLI by default or TUI with --tui.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return readConfigFile()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.GetBool("tui") {
			return cmd.Help()
		}
		s, err := createSession()
		if err != nil {
			return err
		}
		defer s.Close()
		return tui.Run(s.ctx, catalog.Default(), s.host)
	},
}

func init() {
	// Persistent flags (available to all subcommands).
	rootCmd.PersistentFlags().String("workspace", "./work", "Path to workspace root")
	rootCmd.PersistentFlags().Bool("tui", false, "Run in TUI mode")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Int("log-capacity", diaglog.DefaultCapacity, "Entries each history log keeps before evicting the oldest")
	rootCmd.PersistentFlags().Bool("trace-file", true, "Mirror module traces into workspace/traces/<session>.log")
	rootCmd.PersistentFlags().String("config", "", "Optional config file (yaml, toml, json)")

	// Bind flags to Viper.
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("tui", rootCmd.PersistentFlags().Lookup("tui"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_capacity", rootCmd.PersistentFlags().Lookup("log-capacity"))
	_ = viper.BindPFlag("trace_file", rootCmd.PersistentFlags().Lookup("trace-file"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	// Env support: BASICSKIT_WORKSPACE, BASICSKIT_LOG_CAPACITY, etc.
	viper.SetEnvPrefix("BASICSKIT")
	viper.AutomaticEnv()

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

func readConfigFile() error {
	path := viper.GetString("config")
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// session is the wiring shared by commands that launch modules.
type session struct {
	ctx     app.Context
	host    *host.Host
	closers []func() error
}

// Close releases the trace file and the log file, in that order.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "[!] close: %v\n", err)
		}
	}
}

// Helper to create app context
func createSession() (*session, error) {
	cfg := app.MustLoadConfigFromViper()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ws, err := workspace.Ensure(cfg.Workspace)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log, closeLog, err := logger.Setup(logger.Config{Root: ws.Root, Level: cfg.LogLevel})
	if err != nil {
		return nil, err
	}
	log = log.With("session", id)
	s := &session{closers: []func() error{closeLog}}

	sinks := []diaglog.Sink{trace.NewSlog(log)}
	if cfg.TraceFile {
		tf, err := trace.OpenFile(ws.TracePath(id))
		if err != nil {
			s.Close()
			return nil, err
		}
		sinks = append(sinks, tf)
		s.closers = append(s.closers, tf.Close)
	}

	s.ctx = app.Context{
		Ctx:       context.Background(),
		Config:    cfg,
		Workspace: ws,
		Logger:    log,
		Session:   id,
		Now:       time.Now(),
		Out:       os.Stdout,
	}
	s.host = host.New(log, modules.Env{
		Sink:     trace.NewGroup(sinks...),
		Capacity: cfg.LogCapacity,
	})
	return s, nil
}

// `init` subcommand to initialize/ensure workspace structure.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize workspace structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.MustLoadConfigFromViper()
		ws, err := workspace.Ensure(cfg.Workspace)
		if err != nil {
			return err
		}
		fmt.Printf("Workspace ready at: %s\n", ws.Root)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog modules in display order",
	Run: func(cmd *cobra.Command, args []string) {
		listModules(cmd.OutOrStdout(), catalog.Default())
	},
}

func listModules(w io.Writer, reg *modules.Registry) {
	fmt.Fprintln(w, "Available modules:")
	for i, d := range reg.ListModules() {
		fmt.Fprintf(w, "  %d  %-16s - %s\n", i, d.Name, d.Description)
	}
}

// `run` subcommand: one module, scripted events, snapshot on stdout.
var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Launch one module, replay events and print what it logged",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("module")
		index, _ := cmd.Flags().GetInt("index")
		lines, _ := cmd.Flags().GetStringArray("event")
		if name == "" && !cmd.Flags().Changed("index") {
			return fmt.Errorf("module is required (use --module or --index)")
		}
		if name != "" && cmd.Flags().Changed("index") {
			return fmt.Errorf("--module and --index are mutually exclusive")
		}

		events := make([]scenario.Event, 0, len(lines))
		for _, l := range lines {
			ev, err := scenario.ParseEvent(l)
			if err != nil {
				return fmt.Errorf("invalid --event %q: %w", l, err)
			}
			events = append(events, ev)
		}

		s, err := createSession()
		if err != nil {
			return err
		}
		defer s.Close()

		t := target{name: name}
		if name == "" {
			t.index = &index
		}
		err = runOnce(cmd.OutOrStdout(), catalog.Default(), s.host, t, events)
		var nf *modules.NotFoundError
		if errors.As(err, &nf) {
			s.ctx.Logger.Warn("module.not_found", "module", nf.Name)
		}
		return err
	},
}

func init() {
	runCmd.Flags().String("module", "", "Module name (exact, case-sensitive)")
	runCmd.Flags().Int("index", 0, "Module position in the catalog")
	runCmd.Flags().StringArray("event", nil, `Event to deliver, repeatable ("down 10.5 20", "pause", "pointer 7 1 2")`)
}

type target struct {
	name  string
	index *int
}

func runOnce(w io.Writer, reg *modules.Registry, h *host.Host, t target, events []scenario.Event) error {
	var (
		req modules.ActivationRequest
		err error
	)
	if t.index != nil {
		req, err = reg.Select(*t.index)
	} else {
		req, err = reg.Resolve(t.name)
	}
	if err != nil {
		return err
	}

	run, err := h.Launch(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "[*] %s started (run %s)\n", run.Name(), run.ID)

	var errs []error
	for _, ev := range events {
		switch err := scenario.Apply(run, ev); {
		case errors.Is(err, scenario.ErrIgnored):
			fmt.Fprintf(w, "[!] %s: ignored by %s\n", ev, run.Name())
		case err != nil:
			fmt.Fprintf(w, "[!] %s: %v\n", ev, err)
			errs = append(errs, fmt.Errorf("%s: %w", ev, err))
		}
	}
	if err := run.Finish(); err != nil {
		errs = append(errs, fmt.Errorf("finish: %w", err))
	}

	fmt.Fprintf(w, "[+] %s (%s, %d logged, %d evicted)\n", run.Name(), run.State(), run.Recorded(), run.Evicted())
	fmt.Fprintln(w, run.Snapshot())
	return errors.Join(errs...)
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Execute or list scripted scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var scenarioRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		file, _ := cmd.Flags().GetString("file")

		s, err := createSession()
		if err != nil {
			return err
		}
		defer s.Close()

		sc, err := resolveScenario(s.ctx.Workspace, name, file)
		if err != nil {
			return err
		}
		_, err = scenario.Execute(s.ctx, catalog.Default(), s.host, sc)
		return err
	},
}

// resolveScenario loads a predefined scenario by name or a YAML file. A file
// that does not exist as given is looked up in the workspace scenarios/ dir.
func resolveScenario(ws app.WorkspaceHandle, name, file string) (*scenario.Scenario, error) {
	switch {
	case file != "":
		if _, err := os.Stat(file); err != nil && !filepath.IsAbs(file) {
			if alt := ws.Path("scenarios", file); fileExists(alt) {
				file = alt
			}
		}
		sc, err := scenario.Load(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		return sc, nil
	case name != "":
		sc, ok := scenario.Predefined(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario: %s (available: %s)", name, strings.Join(scenario.ListPredefined(), ", "))
		}
		return sc, nil
	}
	return nil, fmt.Errorf("scenario name or file is required")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List predefined scenarios and scenario files in the workspace",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := app.MustLoadConfigFromViper()
		listScenarios(cmd.OutOrStdout(), workspace.Handle{Root: cfg.Workspace})
	},
}

func listScenarios(w io.Writer, ws workspace.Handle) {
	fmt.Fprintln(w, "Available scenarios:")
	for _, name := range scenario.ListPredefined() {
		if sc, ok := scenario.Predefined(name); ok {
			fmt.Fprintf(w, "  %s - %s\n", name, sc.Description)
		}
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(ws.Path("scenarios", pattern))
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return
	}
	sort.Strings(files)
	fmt.Fprintln(w, "Workspace scenarios:")
	for _, f := range files {
		sc, err := scenario.Load(f)
		if err != nil {
			fmt.Fprintf(w, "  %s - invalid: %v\n", filepath.Base(f), err)
			continue
		}
		fmt.Fprintf(w, "  %s - %s\n", filepath.Base(f), sc.Description)
	}
}

func init() {
	scenarioRunCmd.Flags().String("name", "", "Predefined scenario name")
	scenarioRunCmd.Flags().String("file", "", "Path to scenario YAML file")

	scenarioCmd.AddCommand(scenarioRunCmd)
	scenarioCmd.AddCommand(scenarioListCmd)
}

// `report` subcommand: Generate reports from workspace data
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a session report from the scenario runs in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := app.MustLoadConfigFromViper()
		ws, err := workspace.Ensure(cfg.Workspace)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")

		collector := reports.NewCollector(ws)
		report, warnings, err := collector.CollectAll()
		if err != nil {
			return fmt.Errorf("failed to collect scenario reports: %w", err)
		}
		for _, w := range warnings {
			fmt.Printf("[!] Skipped: %v\n", w)
		}
		if title != "" {
			report.Title = title
		}

		if output == "" {
			output = collector.DefaultOutput(format, time.Now())
		}

		switch format {
		case "json":
			err = report.ExportJSON(output)
		case "md", "markdown":
			err = report.ExportMarkdown(output)
		default:
			return fmt.Errorf("unsupported format: %s (use md or json)", format)
		}
		if err != nil {
			return err
		}

		fmt.Printf("[+] Report generated: %s\n", output)
		fmt.Printf("    Scenarios: %d, Steps: %d, Failed: %d, Entries: %d\n",
			report.Statistics.Scenarios,
			report.Statistics.Steps,
			report.Statistics.FailedSteps,
			report.Statistics.Entries)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "md", "Output format (md, json)")
	reportCmd.Flags().String("output", "", "Output file path (default: workspace/reports/)")
	reportCmd.Flags().String("title", "", "Report title")
}

// `version` subcommand.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
