package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun_EmbeddedTree(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "console:\n  color: never\n")
	metricsPath := filepath.Join(dir, "chatbot.prom")
	logPath := filepath.Join(dir, "chatbot.log")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--config", cfgPath,
		"--metrics-file", metricsPath,
		"--log-level", "info",
		"--log-output", logPath,
	}, strings.NewReader("3\n2\nexit\n"), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Welcome to the Ultimate Chatbot Experience!")
	assert.Contains(t, out, "🕷️ Spider-Man")
	assert.Contains(t, out, "👋 Thank you for chatting! Skadoosh and stay awesome!")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `dialogue_turns_total{outcome="command"} 1`)
	assert.Contains(t, string(prom), `dialogue_navigations_total{kind="end"} 1`)

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "session ended")
}

func TestRun_TreeFileAndStayMode(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "console:\n  color: never\n  markers: false\n")
	treePath := writeFile(t, dir, "tree.json", `{"root": {"prompt": "Pick", "options": {
		"a": {"text": "Alpha", "response": "First letter."},
		"b": {"text": "Beta", "response": "Second letter."}
	}}}`)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"--config", cfgPath,
		"--tree", treePath,
		"--leaf-mode", "stay",
	}, strings.NewReader("beta\nexit\n"), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Equal(t, 2, strings.Count(out, "\nPick\na. Alpha\nb. Beta\n"))
	assert.Contains(t, out, "💬 Chatbot: Second letter.")
	assert.NotContains(t, out, "That’s all I have to share")
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "logging:\n  level: error\n")
	badTree := writeFile(t, dir, "bad.yaml", "root:\n  prompt: Hi\n  options: {}\n")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown flag", []string{"--bogus"}, 2},
		{"help", []string{"--help"}, 0},
		{"short help", []string{"-h"}, 0},
		{"invalid leaf mode", []string{"--config", cfgPath, "--leaf-mode", "wander"}, 1},
		{"missing tree file", []string{"--config", cfgPath, "--tree", filepath.Join(dir, "absent.yaml")}, 1},
		{"malformed tree", []string{"--config", cfgPath, "--tree", badTree}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRun_CancelledIsNotAFailure(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", "console:\n  color: never\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"--config", cfgPath}, strings.NewReader("1\n"), &stdout, &stderr)
	assert.Equal(t, 0, code)
}
