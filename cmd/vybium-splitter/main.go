// Command vybium-splitter splits a monolithic STARK proof into the
// sequence of verifier calls an on-chain verifier accepts.
//
// The proof is read as JSON from --proof (or stdin) and the calls are
// written as JSON to --output (or stdout).
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/spf13/pflag"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	splitter "github.com/vybium/vybium-stark-splitter/pkg/vybium-stark-splitter"
)

func main() {
	os.Exit(mainImpl(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func mainImpl(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	config, k, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error parsing config: %v\n", err)
		return 1
	}

	if config.Conf.Dump {
		out, err := k.Marshal(koanfjson.Parser())
		if err != nil {
			fmt.Fprintf(stderr, "Error marshalling config: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(out))
		return 0
	}

	if err := setLogger(config.LogLevel, config.LogType, stderr); err != nil {
		fmt.Fprintf(stderr, "Error initializing logging: %v\n", err)
		return 1
	}
	if config.Metrics {
		metrics.Enable()
	}

	if err := run(config, stdin, stdout); err != nil {
		log.Error("split failed", "err", err)
		return 1
	}
	if config.Metrics {
		logMetrics()
	}
	return 0
}

func run(config *SplitterConfig, stdin io.Reader, stdout io.Writer) error {
	data, err := readInput(config.Proof, stdin)
	if err != nil {
		return err
	}
	proof, err := splitter.ParseProof(data)
	if err != nil {
		return err
	}

	splitConfig := config.SplitConfig()
	var out []byte
	switch config.Format {
	case "bindings":
		calls, err := splitter.GenerateIntegrityCalls(proof, splitConfig)
		if err != nil {
			return err
		}
		log.Info("proof split", "steps", len(calls.IntermediateSteps), "layout", splitConfig.Verifier.Layout)
		out, err = json.MarshalIndent(calls, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal bindings: %w", err)
		}
	default:
		calls, err := splitter.GenerateCalls(proof, splitConfig)
		if err != nil {
			return err
		}
		log.Info("proof split", "calls", len(calls), "layout", splitConfig.Verifier.Layout)
		out, err = calldata.MarshalCalls(calls)
		if err != nil {
			return fmt.Errorf("failed to marshal calls: %w", err)
		}
	}
	return writeOutput(config.Output, stdout, out)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read proof from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof: %w", err)
	}
	return data, nil
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	data = append(data, '\n')
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}

func logMetrics() {
	metrics.DefaultRegistry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case *metrics.Counter:
			log.Info("metric", "name", name, "count", m.Snapshot().Count())
		case *metrics.Timer:
			s := m.Snapshot()
			log.Info("metric", "name", name, "count", s.Count(), "mean", s.Mean())
		}
	})
}
