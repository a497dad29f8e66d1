package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pranshuparmar/wholocked/internal/config"
	"github.com/pranshuparmar/wholocked/internal/logging"
	"github.com/pranshuparmar/wholocked/internal/output"
	"github.com/pranshuparmar/wholocked/internal/proc"
	"github.com/pranshuparmar/wholocked/internal/rm"
	"github.com/pranshuparmar/wholocked/internal/target"
	"github.com/pranshuparmar/wholocked/internal/tui"
	"github.com/pranshuparmar/wholocked/internal/walk"
	"github.com/pranshuparmar/wholocked/pkg/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// newAPI opens the Restart Manager used for every query
var newAPI = rm.System

type options struct {
	configPath  string
	recursive   bool
	keepGoing   bool
	ignore      []string
	slots       int
	jsonOut     bool
	short       bool
	tree        bool
	table       bool
	warnings    bool
	noColor     bool
	logLevel    string
	interactive bool
}

// run executes the command line and returns the process exit status
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	code := 0

	cmd := &cobra.Command{
		Use:   "wholocked [options] path...",
		Short: "Show which processes hold a file or directory open",
		Long: `wholocked asks the Windows Restart Manager which processes are using a file.
With -r every entry below a directory is checked as well.`,
		Version:       effectiveVersion(Version),
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				code = 1
				return nil
			}
			code = execute(cmd.Flags(), opts, args, stdout, stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	cmd.SetVersionTemplate("wholocked {{.Version}}\n")

	// asking for help is treated like a usage error
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		_ = c.Usage()
		code = 1
	})

	f := cmd.Flags()
	f.SortFlags = false
	f.BoolVarP(&opts.recursive, "recursive", "r", false, "recurse into directories")
	f.StringArrayVar(&opts.ignore, "ignore", nil, "skip `path` (repeatable)")
	f.BoolVar(&opts.keepGoing, "keep-going", false, "report errors during a walk and continue")
	f.IntVar(&opts.slots, "slots", 0, "initial holder buffer size")
	f.BoolVar(&opts.jsonOut, "json", false, "output as JSON")
	f.BoolVar(&opts.short, "short", false, "one line per lock")
	f.BoolVar(&opts.tree, "tree", false, "show the process ancestry of each holder")
	f.BoolVar(&opts.table, "table", false, "output as a table")
	f.BoolVar(&opts.warnings, "warnings", false, "show only warnings")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colorized output")
	f.StringVar(&opts.configPath, "config", "", "config `file` (default "+config.DefaultPath()+")")
	f.StringVar(&opts.logLevel, "log-level", "", "trace|debug|info|warn|error|off")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "interactive watch mode")
	f.BoolP("help", "h", false, "print usage and exit with status 1")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n\n", output.SanitizeTerminal(err.Error()))
		_ = cmd.Usage()
		return 1
	}
	return code
}

// execute inspects every argument in turn. A failing argument is reported
// and the remaining ones are still inspected.
func execute(flags *pflag.FlagSet, opts options, args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(flags, opts)
	if err != nil {
		output.RenderError(stderr, "config", err, false)
		return 1
	}
	configureLogging(cfg, stderr)
	color := colorEnabled(cfg.Color, stdout)

	if opts.interactive {
		// the alt screen owns the terminal
		log.Logger = log.Logger.Level(zerolog.Disabled)
		if err := tui.Run(args, scanner(cfg, args), cfg.Refresh); err != nil {
			output.RenderError(stderr, "interactive", err, false)
			return 1
		}
		return 0
	}

	code := 0
	enricher := proc.NewEnricher()
	var reports []model.Report
	for _, arg := range args {
		report, err := inspect(cfg, arg)
		if err != nil {
			output.RenderError(stderr, arg, err, colorEnabled(cfg.Color, stderr))
			code = 1
			continue
		}
		if cfg.Enrich {
			enricher.EnrichLocks(report.Locks)
		}
		reports = append(reports, report)
	}

	switch {
	case opts.jsonOut:
		out, err := output.ToJSON(reports)
		if err != nil {
			output.RenderError(stderr, "json", err, false)
			return 1
		}
		fmt.Fprintln(stdout, out)
	case opts.table:
		output.RenderTable(stdout, reports, color)
	default:
		renderReports(stdout, opts, reports, color)
	}
	return code
}

func renderReports(w io.Writer, opts options, reports []model.Report, color bool) {
	var procs []model.ProcessSummary
	if opts.tree {
		var err error
		if procs, err = proc.GetAllProcesses(); err != nil {
			log.Warn().Err(err).Msg("process snapshot unavailable, ancestry omitted")
		}
	}

	for i, r := range reports {
		switch {
		case opts.warnings:
			output.RenderWarnings(w, r.Warnings, color)
		case opts.tree:
			for _, lock := range r.Locks {
				output.PrintTree(w, lock, proc.BuildAncestry(lock.Holder.PID, procs), color)
			}
		case opts.short:
			output.RenderShort(w, r, color)
		default:
			if i > 0 {
				fmt.Fprintln(w)
			}
			output.RenderStandard(w, r, color)
		}
	}
}

// inspect walks one argument. With keep-going set, walk errors become
// warnings on the report.
func inspect(cfg config.Config, arg string) (model.Report, error) {
	report := model.Report{Target: arg, Recursive: cfg.Recursive}
	resolved, err := target.ResolvePath(arg)
	if err != nil {
		return report, err
	}
	report.Resolved = resolved

	walker := walk.New(rm.NewEnumerator(newAPI(), cfg.Query))
	walkOpts := walk.Options{Recursive: cfg.Recursive, KeepGoing: cfg.KeepGoing}
	for lock, err := range walker.Walk(resolved, walkOpts, walk.NewIgnoreSet(cfg.Ignore...)) {
		if err != nil {
			if lock.Path != "" && lock.Path != resolved {
				err = fmt.Errorf("%s: %w", lock.Path, err)
			}
			if !cfg.KeepGoing {
				return report, err
			}
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		report.AddLock(lock)
	}
	return report, nil
}

// scanner collects the locks of every argument for the watch view. Failures
// and warnings are joined into the error next to the locks that were found.
func scanner(cfg config.Config, args []string) tui.Scanner {
	return func() ([]model.Lock, error) {
		var locks []model.Lock
		var errs []error
		for _, arg := range args {
			report, err := inspect(cfg, arg)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", arg, err))
			}
			for _, w := range report.Warnings {
				errs = append(errs, errors.New(w))
			}
			locks = append(locks, report.Locks...)
		}
		return locks, errors.Join(errs...)
	}
}

// loadConfig reads the config file and lays explicitly set flags over it
func loadConfig(flags *pflag.FlagSet, opts options) (config.Config, error) {
	path, explicit := opts.configPath, opts.configPath != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("recursive") {
		cfg.Recursive = opts.recursive
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing = opts.keepGoing
	}
	if flags.Changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, opts.ignore...)
	}
	if flags.Changed("slots") {
		cfg.Query.Slots = opts.slots
	}
	if opts.noColor {
		cfg.Color = config.ColorNever
		cfg.Log.NoColor = true
	}
	if flags.Changed("log-level") {
		if _, ok := logging.ParseLevel(opts.logLevel); !ok {
			return cfg, fmt.Errorf("unknown log level %q", opts.logLevel)
		}
		cfg.Log.Level = opts.logLevel
	}
	return cfg, config.Validate(cfg)
}

func configureLogging(cfg config.Config, stderr io.Writer) {
	lc := logging.DefaultConfig(logging.ProfileRuntime)
	lc.Out = stderr
	if lvl, ok := logging.ParseLevel(cfg.Log.Level); ok {
		lc.Level = lvl
	}
	lc.Timestamp = cfg.Log.Timestamp
	lc.NoColor = cfg.Log.NoColor || !isTerminal(stderr)
	logging.ApplyEnv(&lc)
	logging.Configure(lc)
}

func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
