// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dialogue-navigator/internal/common/config"
	"dialogue-navigator/internal/common/logger"
	"dialogue-navigator/internal/common/metrics"
	"dialogue-navigator/internal/common/observability"
	"dialogue-navigator/internal/console"
	"dialogue-navigator/internal/content"
	optionmatcher "dialogue-navigator/internal/engine/option-matcher"
	"dialogue-navigator/internal/engine/traversal"
)

const (
	rootPrompt = "\nWelcome to the Ultimate Chatbot Experience! Choose a character to chat with:\n"
	farewell   = "👋 Thank you for chatting! Skadoosh and stay awesome!"
)

type session struct {
	out     *bytes.Buffer
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	summary traversal.Summary
}

// play runs a full session over the built-in tree with the default
// configuration and the given lines of input.
func play(t *testing.T, lines ...string) *session {
	t.Helper()

	cfg := config.Default()
	tree, err := content.Default()
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	obs := observability.New(cfg.App.Name, reg, log)
	t.Cleanup(obs.Shutdown)

	out := &bytes.Buffer{}
	presenter := console.NewPresenter(out, tree, console.Options{Markers: cfg.Console.Markers})
	matcher := optionmatcher.NewMatcher(&optionmatcher.Config{
		FuzzyCutoff:      cfg.Matcher.FuzzyCutoff,
		KeywordMinLength: cfg.Matcher.KeywordMinLength,
	}, log)

	input := strings.NewReader(strings.Join(lines, "\n") + "\n")
	h := traversal.NewHandler(&traversal.Config{LeafMode: cfg.Session.LeafMode}, input, presenter, matcher, m, obs, log)

	summary, err := h.Run(context.Background(), tree)
	require.NoError(t, err)

	return &session{out: out, reg: reg, metrics: m, summary: summary}
}

func TestKalamByKeyword(t *testing.T) {
	s := play(t, "kalam", "tell me about challenges in life", "exit")

	out := s.out.String()
	assert.Contains(t, out, "🇮🇳 Dr. Kalam: Good evening, my young friend.")
	assert.Contains(t, out, "Challenges test our vision and courage.")
	assert.Contains(t, out, "\nWould you like to:\n")
	assert.Contains(t, out, "💡 2. Motivation during challenges")
	assert.Equal(t, traversal.EndExit, s.summary.EndReason)
	assert.Equal(t, "root.options[1].followup.options[2].followup", s.summary.Path)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.MatchesTotal.WithLabelValues(string(optionmatcher.StrategyText))))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.MatchesTotal.WithLabelValues(string(optionmatcher.StrategyKeyword))))
}

func TestPoReturnToMainMenu(t *testing.T) {
	s := play(t, "2", "3", "exit")

	out := s.out.String()
	assert.Contains(t, out, "🐼 Po: Whoa! You know my name?")
	assert.Contains(t, out, "🔙 3. Return to main menu")
	assert.Equal(t, 2, strings.Count(out, rootPrompt))
	assert.Equal(t, "root", s.summary.Path)
	assert.Equal(t, 3, s.summary.Turns)
}

func TestSpiderManExitFromDepth(t *testing.T) {
	s := play(t, "spidr man", "2", "EXIT")

	out := s.out.String()
	assert.Contains(t, out, "🕷️ Spider-Man: Yo, it’s your friendly neighborhood Spider-Man")
	assert.Contains(t, out, "\nWhat would you like to do?\n")
	assert.True(t, strings.HasSuffix(out, farewell+"\n"))
	assert.Equal(t, traversal.EndExit, s.summary.EndReason)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.MatchesTotal.WithLabelValues(string(optionmatcher.StrategyFuzzy))))
}

func TestLeafThenMenu(t *testing.T) {
	s := play(t, "1", "1", "menu", "exit")

	out := s.out.String()
	assert.Contains(t, out, "inspiring young minds my greatest achievement")
	assert.Contains(t, out, "💬 That’s all I have to share on that topic.")
	assert.Equal(t, 2, strings.Count(out, rootPrompt))
	assert.Equal(t, "root", s.summary.Path)
}

func TestInvalidInputThenEndOfInput(t *testing.T) {
	s := play(t, "who are you?", "7")

	out := s.out.String()
	assert.Equal(t, 2, strings.Count(out, "Invalid choice. Please try again."))
	assert.Equal(t, 3, strings.Count(out, rootPrompt))
	assert.Equal(t, 2, s.summary.Invalid)
	assert.Equal(t, traversal.EndEOF, s.summary.EndReason)

	count, err := testutil.GatherAndCount(s.reg, "dialogue_turns_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
