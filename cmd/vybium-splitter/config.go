package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/pflag"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/utils"
)

// ConfConfig controls where configuration is read from
type ConfConfig struct {
	File      string `koanf:"file"`
	EnvPrefix string `koanf:"env-prefix"`
	Dump      bool   `koanf:"dump"`
}

// SplitterConfig is the command line configuration
type SplitterConfig struct {
	Conf ConfConfig `koanf:"conf"`

	LogLevel string `koanf:"log-level"`
	LogType  string `koanf:"log-type"`
	Metrics  bool   `koanf:"metrics"`

	Proof  string `koanf:"proof"`
	Output string `koanf:"output"`
	Format string `koanf:"format"`

	JobID    string               `koanf:"job-id"`
	Contract string               `koanf:"contract"`
	Verifier utils.VerifierConfig `koanf:"verifier"`
}

var DefaultSplitterConfig = SplitterConfig{
	Conf:     ConfConfig{EnvPrefix: "SPLITTER"},
	LogLevel: "INFO",
	LogType:  "plaintext",
	Proof:    "-",
	Output:   "-",
	Format:   "calls",
	Contract: utils.DefaultConfig().Contract,
	Verifier: utils.DefaultConfig().Verifier,
}

func addFlags(f *pflag.FlagSet) {
	f.String("conf.file", DefaultSplitterConfig.Conf.File, "JSON configuration file")
	f.String("conf.env-prefix", DefaultSplitterConfig.Conf.EnvPrefix, "prefix of environment variables overriding the configuration")
	f.Bool("conf.dump", DefaultSplitterConfig.Conf.Dump, "print the configuration and exit")

	f.String("log-level", DefaultSplitterConfig.LogLevel, "log level, valid values are CRIT, ERROR, WARN, INFO, DEBUG, TRACE")
	f.String("log-type", DefaultSplitterConfig.LogType, "log type (plaintext or json)")
	f.Bool("metrics", DefaultSplitterConfig.Metrics, "collect split metrics and log them on exit")

	f.String("proof", DefaultSplitterConfig.Proof, "proof JSON file, - for stdin")
	f.String("output", DefaultSplitterConfig.Output, "output file, - for stdout")
	f.String("format", DefaultSplitterConfig.Format, "output format (calls or bindings)")

	f.String("job-id", DefaultSplitterConfig.JobID, "job id as 0x-prefixed felt or short string, empty derives it from the public input")
	f.String("contract", DefaultSplitterConfig.Contract, "verifier contract address")
	f.String("verifier.layout", DefaultSplitterConfig.Verifier.Layout, "verifier layout")
	f.String("verifier.hasher", DefaultSplitterConfig.Verifier.Hasher, "verifier commitment hasher")
	f.String("verifier.stone-version", DefaultSplitterConfig.Verifier.StoneVersion, "prover version")
	f.String("verifier.memory-verification", DefaultSplitterConfig.Verifier.MemoryVerification, "memory verification mode")
}

// Validate checks if the configuration is valid
func (c *SplitterConfig) Validate() error {
	if c.Format != "calls" && c.Format != "bindings" {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	if c.Proof == "" {
		return errors.New("proof path must be set")
	}
	return c.SplitConfig().Validate()
}

// SplitConfig returns the library configuration
func (c *SplitterConfig) SplitConfig() *utils.Config {
	return utils.DefaultConfig().
		WithJobID(c.JobID).
		WithContract(c.Contract).
		WithLayout(c.Verifier.Layout).
		WithHasher(c.Verifier.Hasher).
		WithStoneVersion(c.Verifier.StoneVersion).
		WithMemoryVerification(c.Verifier.MemoryVerification)
}

// parseConfig layers flag defaults, the configuration file, the environment
// and explicitly set flags, in increasing priority
func parseConfig(args []string) (*SplitterConfig, *koanf.Koanf, error) {
	f := pflag.NewFlagSet("vybium-splitter", pflag.ContinueOnError)
	addFlags(f)
	if err := f.Parse(args); err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")
	// an empty koanf makes posflag load every flag default
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("error loading flags: %w", err)
	}

	if path := k.String("conf.file"); path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	if prefix := k.String("conf.env-prefix"); prefix != "" {
		prefix = strings.TrimSuffix(prefix, "_") + "_"
		if err := k.Load(env.Provider(prefix, ".", envKey(prefix)), nil); err != nil {
			return nil, nil, fmt.Errorf("error loading environment: %w", err)
		}
	}

	// flags set on the command line win over everything else
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("error loading flags: %w", err)
	}

	var config SplitterConfig
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	return &config, k, nil
}

// envKey maps SPLITTER_VERIFIER_STONE__VERSION to verifier.stone-version
func envKey(prefix string) func(string) string {
	return func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, prefix))
		s = strings.ReplaceAll(s, "__", "-")
		return strings.ReplaceAll(s, "_", ".")
	}
}

func toSlogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "CRIT":
		return log.LevelCrit, nil
	case "ERROR":
		return log.LevelError, nil
	case "WARN":
		return log.LevelWarn, nil
	case "INFO":
		return log.LevelInfo, nil
	case "DEBUG":
		return log.LevelDebug, nil
	case "TRACE":
		return log.LevelTrace, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", level)
	}
}

func handlerFromLogType(logType string, output io.Writer) (slog.Handler, error) {
	switch logType {
	case "plaintext":
		return log.NewTerminalHandler(output, false), nil
	case "json":
		return log.JSONHandler(output), nil
	default:
		return nil, fmt.Errorf("invalid log type %q", logType)
	}
}

func setLogger(logLevel, logType string, output io.Writer) error {
	level, err := toSlogLevel(logLevel)
	if err != nil {
		return err
	}
	handler, err := handlerFromLogType(logType, output)
	if err != nil {
		return fmt.Errorf("error parsing log type when creating handler: %w", err)
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)
	log.SetDefault(log.NewLogger(glogger))
	return nil
}
