package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/calldata"
	"github.com/vybium/vybium-stark-splitter/internal/vybium-stark-splitter/testutil"
)

func writeProof(t *testing.T) string {
	t.Helper()
	proof := testutil.MustNewProof(testutil.DefaultProofParams())
	data, err := json.Marshal(proof)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "proof.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	config, _, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "-", config.Proof)
	assert.Equal(t, "calls", config.Format)
	assert.Equal(t, DefaultSplitterConfig.Verifier, config.Verifier)
}

func TestParseConfigLayering(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(confFile, []byte(`{"job-id":"0x7","verifier":{"layout":"dynamic"},"output":"from-file.json"}`), 0o600))

	t.Setenv("SPLITTER_VERIFIER_STONE__VERSION", "stone5")
	t.Setenv("SPLITTER_OUTPUT", "from-env.json")

	config, _, err := parseConfig([]string{"--conf.file", confFile, "--job-id", "0x9"})
	require.NoError(t, err)

	assert.Equal(t, "0x9", config.JobID, "flag wins over file")
	assert.Equal(t, "dynamic", config.Verifier.Layout, "file overrides default")
	assert.Equal(t, "stone5", config.Verifier.StoneVersion)
	assert.Equal(t, "from-env.json", config.Output, "env wins over file")
}

func TestParseConfigEnvWithoutFile(t *testing.T) {
	t.Setenv("SPLITTER_OUTPUT", "from-env.json")
	t.Setenv("SPLITTER_VERIFIER_LAYOUT", "dynamic")

	config, _, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", config.Output)
	assert.Equal(t, "dynamic", config.Verifier.Layout)
	assert.Equal(t, "-", config.Proof, "defaults survive")

	config, _, err = parseConfig([]string{"--output", "from-flag.json"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", config.Output, "flag wins over env")
}

func TestParseConfigCustomEnvPrefix(t *testing.T) {
	t.Setenv("SPLITTER_OUTPUT", "ignored.json")
	t.Setenv("CUSTOM_OUTPUT", "custom.json")

	config, _, err := parseConfig([]string{"--conf.env-prefix", "CUSTOM"})
	require.NoError(t, err)
	assert.Equal(t, "custom.json", config.Output)
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"--format", "xml"}},
		{"layout", []string{"--verifier.layout", ""}},
		{"unknown flag", []string{"--bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestSetLoggerRejectsBadValues(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, setLogger("LOUD", "plaintext", &buf))
	assert.Error(t, setLogger("INFO", "xml", &buf))
	assert.NoError(t, setLogger("debug", "json", &buf))
}

func TestMainImplWritesCalls(t *testing.T) {
	proofPath := writeProof(t)
	var stdout, stderr bytes.Buffer

	code := mainImpl([]string{"--proof", proofPath, "--log-level", "ERROR"}, nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var calls []calldata.Call
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &calls))
	// initial, one step per inner layer, final
	assert.Len(t, calls, len(testutil.DefaultProofParams().InnerStepSizes)+2)
	assert.Equal(t, calldata.SelectorVerifyProofInitial, calls[0].Selector)
	assert.Equal(t, calldata.SelectorVerifyProofFinalAndRegisterFact, calls[len(calls)-1].Selector)
}

func TestMainImplBindingsFromStdin(t *testing.T) {
	data, err := os.ReadFile(writeProof(t))
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "bindings.json")
	var stdout, stderr bytes.Buffer

	code := mainImpl([]string{"--format", "bindings", "--output", out, "--log-level", "ERROR"}, bytes.NewReader(data), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	var bindings calldata.IntegrityCalls
	require.NoError(t, json.Unmarshal(written, &bindings))
	assert.Len(t, bindings.IntermediateSteps, len(testutil.DefaultProofParams().InnerStepSizes))
	assert.Empty(t, bindings.Initial.StarkProof.Witness.FriWitness.Layers)
}

func TestMainImplRejectsBadProof(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := mainImpl([]string{"--log-level", "CRIT"}, bytes.NewReader([]byte("{not json")), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
}

func TestConfDump(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := mainImpl([]string{"--conf.dump", "--contract", "0x1234"}, nil, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), `"contract":"0x1234"`)
}
