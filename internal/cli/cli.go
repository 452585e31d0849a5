package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/format"
	"gopkg.in/yaml.v3"
)

// ExitError is an error that carries a process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Mode selects the transform direction.
type Mode string

const (
	// ModeFlatten turns a nested document into a flat map.
	ModeFlatten Mode = "flatten"
	// ModeUnflatten rebuilds a nested document from a flat map.
	ModeUnflatten Mode = "unflatten"
)

// Config is the parsed command line.
type Config struct {
	Mode      Mode
	InputPath string
	In        format.Format
	Out       format.Format
	Options   flatkv.Options
	LogLevel  string
	LogFormat string
}

// Parse processes command line arguments. It returns the Config, whether the program
// should exit cleanly (help was requested) or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flatkv", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
flatkv - Convert between nested documents and flat key/value maps.

Usage:
  flatkv [options] [FILE]

Arguments:
  FILE
    Input document. Standard input is read when omitted or "-".

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := flatkv.DefaultOptions()
	modeFlag := flagSet.String("mode", string(ModeFlatten), "Transform direction. Options: 'flatten' or 'unflatten'.")
	inFlag := flagSet.String("in", "json", "Input format. Options: 'json', 'yaml', 'hcl', 'env'.")
	outFlag := flagSet.String("out", "", "Output format. Options: 'json', 'yaml', 'env'. Defaults to 'env' when flattening and 'json' otherwise.")
	configFlag := flagSet.String("config", "", "YAML or JSON file holding the key format options.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var fc flatkv.Config
	prefix := flagSet.String("prefix", defaults.Prefix, "String written before every map key.")
	suffix := flagSet.String("suffix", defaults.Suffix, "String written after every map key.")
	suffixEnd := flagSet.Bool("suffix-end", defaults.SuffixEnd, "Keep the suffix at the end of leaf keys.")
	prefixList := flagSet.String("prefix-list", defaults.PrefixList, "String written before every list index.")
	suffixList := flagSet.String("suffix-list", defaults.SuffixList, "String written after every list index.")
	suffixListEnd := flagSet.Bool("suffix-list-end", defaults.SuffixListEnd, "Keep the list suffix at the end of leaf keys.")
	start := flagSet.String("start", defaults.StartKey, "Key prefix of every flat key.")
	maxDepth := flagSet.Int("max-depth", defaults.MaxDepth, "Maximum nesting depth. 0 disables the limit.")
	strict := flagSet.Bool("strict", defaults.Strict, "Fail when a key would replace a value with a container.")
	keepNumeric := flagSet.Bool("keep-numeric-maps", defaults.KeepNumericMaps, "Do not turn maps with keys 0..n-1 into lists.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "at most one input file can be given"}
	}

	mode := Mode(strings.ToLower(*modeFlag))
	if mode != ModeFlatten && mode != ModeUnflatten {
		return nil, false, &ExitError{Code: 2, Message: "invalid mode: must be 'flatten' or 'unflatten'"}
	}

	in, err := format.Parse(*inFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid in: %v", err)}
	}

	outName := *outFlag
	if outName == "" {
		outName = string(format.JSON)
		if mode == ModeFlatten {
			outName = string(format.Env)
		}
	}
	out, err := format.Parse(outName)
	if err != nil || out == format.HCL {
		return nil, false, &ExitError{Code: 2, Message: "invalid out: must be 'json', 'yaml' or 'env'"}
	}
	if mode == ModeUnflatten && out == format.Env {
		return nil, false, &ExitError{Code: 2, Message: "invalid out: 'env' needs flat output"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *configFlag != "" {
		fc, err = loadConfig(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		slog.Debug("Key format loaded.", "path", *configFlag)
	}

	// Flags given explicitly win over the config file.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prefix":
			fc.Prefix = prefix
		case "suffix":
			fc.Suffix = suffix
		case "suffix-end":
			fc.SuffixEnd = suffixEnd
		case "prefix-list":
			fc.PrefixList = prefixList
		case "suffix-list":
			fc.SuffixList = suffixList
		case "suffix-list-end":
			fc.SuffixListEnd = suffixListEnd
		case "start":
			fc.Start = start
		case "max-depth":
			fc.MaxDepth = maxDepth
		case "strict":
			fc.Strict = strict
		case "keep-numeric-maps":
			fc.KeepNumericMaps = keepNumeric
		}
	})

	opts := fc.Options()
	if _, err := opts.Splitter(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	config := &Config{
		Mode:      mode,
		InputPath: flagSet.Arg(0),
		In:        in,
		Out:       out,
		Options:   opts,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func loadConfig(path string) (flatkv.Config, error) {
	var c flatkv.Config
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}
