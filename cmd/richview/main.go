// Package main is the entry point for the richview terminal viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine"
	"github.com/dshills/richtext/internal/layout"
	"github.com/dshills/richtext/internal/logging"
	"github.com/dshills/richtext/internal/shaping"
	"github.com/dshills/richtext/internal/style"
	"github.com/dshills/richtext/internal/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	ConfigPath  string
	FilePath    string
	ReadOnly    bool
	EastAsian   bool
	ShowVersion bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.ShowVersion {
		fmt.Printf("richview %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	cfg := config.New(config.WithFile(opts.ConfigPath))
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lc := cfg.Logging()
	logger, err := logging.New(logging.Config{
		Level:     lc.Level,
		Format:    lc.Format,
		File:      lc.File,
		Output:    io.Discard, // the screen owns the terminal
		Component: "richview",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	content, err := readContent(opts.FilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize terminal: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnableMouse()

	termWidth, _ := screen.Size()
	layoutOpts, err := layoutOptions(cfg, termWidth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fonts := shaping.NewCellProvider(opts.EastAsian)
	docOpts := []engine.Option{
		engine.WithContent(content),
		engine.WithLogger(logger.Logger),
		engine.WithLayout(layoutOpts...),
	}
	if opts.ReadOnly {
		docOpts = append(docOpts, engine.WithReadOnly())
	}
	doc := engine.New(style.NewRegistry(), shaping.NewBuiltinShaper(fonts), fonts, docOpts...)
	defer doc.Close()

	if cfg.Path() != "" {
		err := cfg.Watch(func(c *config.Config, err error) {
			if err == nil {
				_ = screen.PostEvent(tcell.NewEventInterrupt(c))
			}
		})
		if err != nil {
			logger.Warn("settings watch failed", "path", cfg.Path(), "error", err)
		}
		defer cfg.Close()
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(signals)
		close(done)
	}()
	go forwardSignal(signals, done, screen)

	logger.Info("started", "file", opts.FilePath, "config", cfg.Path(), "chars", doc.Len())
	return loop(screen, view.New(doc, view.WithLogger(logger.Logger)), cfg, logger)
}

// loop paints and dispatches events until the user quits.
func loop(screen tcell.Screen, v *view.View, cfg *config.Config, logger *logging.Logger) int {
	doc := v.Document()
	for {
		v.Draw(screen)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return 0
		case *tcell.EventResize:
			w, _ := screen.Size()
			doc.SetWidth(layoutWidth(cfg.Layout(), w))
			screen.Sync()
		case *tcell.EventKey:
			if isQuit(ev) {
				return 0
			}
			if _, err := v.HandleKey(ev); err != nil && !errors.Is(err, engine.ErrReadOnly) {
				logger.Warn("key", "key", ev.Name(), "error", err)
			}
		case *tcell.EventMouse:
			if err := v.HandleMouse(ev); err != nil {
				logger.Warn("mouse", "error", err)
			}
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case os.Signal:
				logger.Info("signal", "signal", data.String())
				return 0
			case *config.Config:
				w, _ := screen.Size()
				if err := applySettings(doc, data, w); err != nil {
					logger.Warn("apply settings", "error", err)
				}
				if err := logger.SetLevel(data.Logging().Level); err != nil {
					logger.Warn("apply settings", "error", err)
				}
				v.Scroll(0)
			}
		}
	}
}

// forwardSignal posts the first signal received to screen. It returns when
// done is closed.
func forwardSignal(signals <-chan os.Signal, done <-chan struct{}, screen tcell.Screen) {
	select {
	case sig := <-signals:
		_ = screen.PostEvent(tcell.NewEventInterrupt(sig))
	case <-done:
	}
}

// isQuit reports Ctrl+Q, however the terminal encodes it.
func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlQ ||
		(ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'q' || ev.Rune() == 'Q'))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	flags := flag.NewFlagSet("richview", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.ConfigPath, "config", "", "Path to settings file (.toml, .yaml)")
	flags.StringVar(&opts.ConfigPath, "c", "", "Path to settings file (shorthand)")
	flags.StringVar(&opts.FilePath, "file", "", "Text file to open")
	flags.StringVar(&opts.FilePath, "f", "", "Text file to open (shorthand)")
	flags.BoolVar(&opts.ReadOnly, "readonly", false, "Open the document read-only")
	flags.BoolVar(&opts.ReadOnly, "R", false, "Open the document read-only (shorthand)")
	flags.BoolVar(&opts.EastAsian, "east-asian", false, "Treat ambiguous-width characters as wide")
	flags.BoolVar(&opts.ShowVersion, "version", false, "Show version information")
	flags.BoolVar(&opts.ShowVersion, "v", false, "Show version information (shorthand)")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "richview - rich-text layout viewer\n\n")
		fmt.Fprintf(stderr, "Usage: richview [options] [file]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nKeys:\n")
		fmt.Fprintf(stderr, "  Ctrl+B / Ctrl+U   Toggle bold / underline\n")
		fmt.Fprintf(stderr, "  Ctrl+Q            Quit\n")
	}

	if err := flags.Parse(args); err != nil {
		return opts, err
	}

	// A lone positional argument is the file to open.
	if opts.FilePath == "" && flags.NArg() > 0 {
		opts.FilePath = flags.Arg(0)
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return opts, fmt.Errorf("unexpected arguments: %v", flags.Args()[1:])
	}
	return opts, nil
}

// readContent returns the file's text. A missing file opens empty.
func readContent(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// layoutOptions converts the settings to layout options for a terminal of
// termWidth cells.
func layoutOptions(cfg *config.Config, termWidth int) ([]layout.Option, error) {
	lc := cfg.Layout()
	cols, err := lc.LayoutColumns()
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.DefaultStyle().Style()
	if err != nil {
		return nil, err
	}
	return []layout.Option{
		layout.WithColumns(cols...),
		layout.WithWidth(layoutWidth(lc, termWidth)),
		layout.WithOutlineWidth(lc.OutlineUnits()),
		layout.WithDefaults(defaults),
	}, nil
}

// applySettings re-applies reloaded settings to an open document.
func applySettings(doc *engine.Document, cfg *config.Config, termWidth int) error {
	lc := cfg.Layout()
	cols, err := lc.LayoutColumns()
	if err != nil {
		return err
	}
	defaults, err := cfg.DefaultStyle().Style()
	if err != nil {
		return err
	}
	if err := doc.SetColumns(cols); err != nil {
		return err
	}
	doc.SetDefaults(defaults)
	doc.SetOutlineWidth(lc.OutlineUnits())
	doc.SetWidth(layoutWidth(lc, termWidth))
	return nil
}

// layoutWidth is the configured width, narrowed to the terminal.
func layoutWidth(lc config.LayoutConfig, termWidth int) fixed.Int26_6 {
	w := lc.WidthUnits()
	if termWidth > 0 {
		w = min(w, fixed.I(termWidth))
	}
	return w
}
