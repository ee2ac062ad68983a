package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/radialtree/internal/datasource"
	"github.com/vanderheijden86/radialtree/pkg/config"
	"github.com/vanderheijden86/radialtree/pkg/debug"
	"github.com/vanderheijden86/radialtree/pkg/export"
	"github.com/vanderheijden86/radialtree/pkg/hooks"
	"github.com/vanderheijden86/radialtree/pkg/metrics"
	"github.com/vanderheijden86/radialtree/pkg/record"
	"github.com/vanderheijden86/radialtree/pkg/scene"
	"github.com/vanderheijden86/radialtree/pkg/session"
	"github.com/vanderheijden86/radialtree/pkg/ui"
	"github.com/vanderheijden86/radialtree/pkg/version"
	"github.com/vanderheijden86/radialtree/pkg/watcher"
)

// errUsage marks command line mistakes.
var errUsage = errors.New("usage")

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// cliOptions is the parsed command line.
type cliOptions struct {
	configPath    string
	sets          listFlag
	outputs       listFlag
	watch         bool
	noTransitions bool
	title         string
	stats         bool
	noHooks       bool
	help          bool
	version       bool
	location      string
}

func parseFlags(args []string, output io.Writer) (cliOptions, error) {
	var cli cliOptions
	fs := flag.NewFlagSet("rt", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cli.configPath, "config", "", "Config file (default "+config.ConfigPath()+")")
	fs.Var(&cli.sets, "set", "Override an option, NAME=VALUE (repeatable)")
	fs.Var(&cli.outputs, "o", "Export to PATH (repeatable): .svg .png .html .json .sqlite3")
	fs.BoolVar(&cli.watch, "watch", false, "Re-render when the CSV file changes (TUI only)")
	fs.BoolVar(&cli.noTransitions, "no-transitions", false, "Shorthand for -set enable_transitions=false")
	fs.StringVar(&cli.title, "title", "", "Title of exported documents (default: root label)")
	fs.BoolVar(&cli.stats, "stats", false, "Print stage timings to stderr after exporting")
	fs.BoolVar(&cli.noHooks, "no-hooks", false, "Skip hooks from "+hooks.ConfigDir+"/hooks.yaml")
	fs.BoolVar(&cli.help, "help", false, "Show help")
	fs.BoolVar(&cli.version, "version", false, "Show version")
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: rt [options] <csv-path-or-url>")
		fmt.Fprintln(output, "\nDraws a radial tidy tree of hierarchical CSV data.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return cli, err
	}
	if cli.help || cli.version {
		return cli, nil
	}
	switch fs.NArg() {
	case 1:
		cli.location = fs.Arg(0)
	case 0:
		return cli, fmt.Errorf("%w: missing data location", errUsage)
	default:
		return cli, fmt.Errorf("%w: expected one data location, got %d", errUsage, fs.NArg())
	}
	return cli, nil
}

// resolveOptions loads the config file and applies command line overrides.
func resolveOptions(cli cliOptions) (config.Options, error) {
	var opts config.Options
	var err error
	if cli.configPath != "" {
		opts, err = config.LoadFrom(cli.configPath)
		if err != nil {
			return opts, err
		}
	} else {
		opts, err = config.Load()
		if err != nil {
			// Non-fatal: continue with defaults
			debug.Log("config: %v", err)
			opts = config.DefaultOptions()
		}
	}

	for _, kv := range cli.sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return opts, fmt.Errorf("%w: -set %q is not NAME=VALUE", errUsage, kv)
		}
		if err := opts.Set(strings.TrimSpace(name), value); err != nil {
			return opts, err
		}
	}
	if cli.noTransitions {
		opts.EnableTransitions = false
	}
	return opts, opts.Validate()
}

// runExports renders the records fully revealed and writes every output
// concurrently. With transitions enabled, HTML pages start hidden and play
// the reveal in the browser. Hooks from hooksDir run around each file; an
// empty hooksDir disables them.
func runExports(ctx context.Context, recs []record.Record, opts config.Options, outputs []string, title, hooksDir string) error {
	static := opts
	static.EnableTransitions = false
	sess := session.New(static)
	if err := sess.Render(ctx, recs); err != nil {
		return err
	}
	sc := sess.Scene()
	var page *scene.Scene
	if opts.EnableTransitions {
		page = scene.Build(sc.Tree, opts, false)
	}
	sceneFor := func(path string) *scene.Scene {
		if f, err := export.FormatFor(path); err == nil && f == export.FormatHTML && page != nil {
			return page
		}
		return sc
	}

	g, _ := errgroup.WithContext(ctx)
	for _, path := range outputs {
		g.Go(func() error {
			if err := exportWithHooks(sceneFor(path), path, title, hooksDir); err != nil {
				return fmt.Errorf("exporting %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func exportWithHooks(sc *scene.Scene, path, title, hooksDir string) error {
	format, err := export.FormatFor(path)
	if err != nil {
		return err
	}
	runner, err := hooks.RunHooks(hooksDir, hooks.ExportContext{
		ExportPath:   path,
		ExportFormat: string(format),
		NodeCount:    sc.Tree.Len(),
		MaxDepth:     sc.MaxDepthIndex(),
		Timestamp:    time.Now(),
	}, hooksDir == "")
	if err != nil {
		return err
	}
	if runner != nil {
		if err := runner.RunPreExport(); err != nil {
			return err
		}
	}
	if err := export.Save(sc, export.Options{Path: path, Title: title}); err != nil {
		return err
	}
	if runner != nil {
		err := runner.RunPostExport()
		debug.Log("hooks: %s: %s", path, runner.Summary())
		return err
	}
	return nil
}

func printStats(w io.Writer) {
	if err := metrics.WriteReport(w); err != nil {
		debug.Log("rt: stats: %v", err)
	}
}

func main() {
	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'rt -help' for usage.")
		os.Exit(1)
	}

	if cli.help {
		fmt.Println("Usage: rt [options] <csv-path-or-url>")
		fmt.Println("\nDraws a radial tidy tree of hierarchical CSV data.")
		fmt.Println("Without -o, an interactive terminal view starts.")
		os.Exit(0)
	}

	if cli.version {
		fmt.Printf("rt %s\n", version.String())
		os.Exit(0)
	}

	opts, err := resolveOptions(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in options: %v\n", err)
		os.Exit(1)
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if len(cli.outputs) == 0 && !interactive {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use -o to export")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := datasource.Resolve(cli.location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	recs, err := datasource.LoadFromSource(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", cli.location, err)
		os.Exit(1)
	}

	if len(cli.outputs) > 0 {
		hooksDir := ""
		if !cli.noHooks {
			hooksDir, _ = os.Getwd()
		}
		if err := runExports(ctx, recs, opts, cli.outputs, cli.title, hooksDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cli.stats {
			printStats(os.Stderr)
		}
		return
	}
	stop()

	var modelOpts []ui.ModelOption
	if cli.configPath != "" {
		modelOpts = append(modelOpts, ui.WithConfigPath(cli.configPath))
	}
	if cli.watch {
		if !src.IsLocal() {
			fmt.Fprintln(os.Stderr, "Error: -watch needs a local file")
			os.Exit(1)
		}
		w, err := watcher.NewWatcher(src.Path,
			watcher.WithDebounceDuration(watcher.DefaultDebounceDuration),
		)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", src.Path, err)
			os.Exit(1)
		}
		modelOpts = append(modelOpts, ui.WithWatcher(w))
	}

	m := ui.NewModel(opts, src, recs, modelOpts...)
	defer m.Close()

	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error running radial tree: %v\n", err)
		os.Exit(1)
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set RT_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("RT_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
