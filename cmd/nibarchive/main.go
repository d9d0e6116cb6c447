// nibarchive inspects and converts NIB Archive (.nib) files.
//
// Usage:
//
//	nibarchive tojson <file.nib> <out.json>
//	nibarchive export [--format json|yaml|cbor|msgpack] <file.nib> [out]
//	nibarchive info <file.nib>
//	nibarchive verify <file.nib>
//	nibarchive diff <a.nib> <b.nib>
//	nibarchive browse <file.nib>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	nibarchive "github.com/wippyai/nib-archive"
	"github.com/wippyai/nib-archive/config"
	"github.com/wippyai/nib-archive/nib"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			if err.Error() != "" {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitError ends the command with a specific status. An empty message
// prints nothing.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

// options holds the flags shared by every command plus the command-specific
// ones.
type options struct {
	configPath string
	verbose    bool
	strictUTF8 bool
	format     string
	flat       bool
}

type command struct {
	args    string
	summary string
	minArgs int
	maxArgs int
	flags   func(*pflag.FlagSet, *options)
	run     func(*env, []string) error
}

var commands = map[string]*command{
	"tojson": {
		args:    "<file.nib> <out.json>",
		summary: "Decode an archive and write its JSON projection, creating parent directories.",
		minArgs: 2,
		maxArgs: 2,
		flags:   projectionFlags,
		run:     runToJSON,
	},
	"export": {
		args:    "<file.nib> [out]",
		summary: "Write a projection in any format to a file or stdout.",
		minArgs: 1,
		maxArgs: 2,
		flags: func(fs *pflag.FlagSet, o *options) {
			projectionFlags(fs, o)
			fs.StringVarP(&o.format, "format", "f", "", "json, yaml, cbor or msgpack (default from config)")
		},
		run: runExport,
	},
	"info": {
		args:    "<file.nib>",
		summary: "Show the header, table sizes, trailing bytes, warnings and digests.",
		minArgs: 1,
		maxArgs: 1,
		run:     runInfo,
	},
	"verify": {
		args:    "<file.nib>",
		summary: "Decode and re-encode, reporting whether the bytes are identical (exit 2 if not).",
		minArgs: 1,
		maxArgs: 1,
		run:     runVerify,
	},
	"diff": {
		args:    "<a.nib> <b.nib>",
		summary: "Compare two archives through their YAML projections (exit 1 if they differ).",
		minArgs: 2,
		maxArgs: 2,
		run:     runDiff,
	},
	"browse": {
		args:    "<file.nib>",
		summary: "Browse objects and their values interactively.",
		minArgs: 1,
		maxArgs: 1,
		run:     runBrowse,
	},
}

func projectionFlags(fs *pflag.FlagSet, o *options) {
	fs.BoolVar(&o.flat, "flat", false, "write the class-keyed {class: {key: value}} projection")
}

// env is what a command runs with.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	opts   options
	stdout io.Writer
	stderr io.Writer
}

func (e *env) decodeOptions() []nib.DecodeOption {
	opts := []nib.DecodeOption{nib.WithLogger(e.log)}
	if e.cfg.Decode.StrictUTF8 {
		opts = append(opts, nib.WithStrictUTF8())
	}
	return opts
}

func (e *env) open(path string) (*nib.Archive, error) {
	a, err := nibarchive.Open(path, e.decodeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to open NIB archive %s: %w", path, err)
	}
	return a, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return &exitError{code: 2}
	}
	name := args[0]
	switch name {
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", name)
	}

	var opts options
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default $"+config.EnvVar+")")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	fs.BoolVar(&opts.strictUTF8, "strict-utf8", false, "reject keys and class names that are not valid UTF-8")
	if cmd.flags != nil {
		cmd.flags(fs, &opts)
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: nibarchive %s [flags] %s\n\n%s\n\nFlags:\n", name, cmd.args, cmd.summary)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := fs.Args()
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		fs.Usage()
		return fmt.Errorf("%s: expected %s", name, cmd.args)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if opts.strictUTF8 {
		cfg.Decode.StrictUTF8 = true
	}

	log, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	nib.SetLogger(log)

	return cmd.run(&env{cfg: cfg, log: log, opts: opts, stdout: stdout, stderr: stderr}, rest)
}

// newLogger builds a zap logger writing to w in the configured format.
func newLogger(c config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var enc zapcore.Encoder
	if c.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nibarchive <command> [flags] <args>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-7s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'nibarchive <command> --help' for the flags of a command.")
}
