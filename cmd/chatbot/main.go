// cmd/chatbot/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"dialogue-navigator/internal/common/config"
	apperrors "dialogue-navigator/internal/common/errors"
	"dialogue-navigator/internal/common/logger"
	"dialogue-navigator/internal/common/metrics"
	"dialogue-navigator/internal/common/observability"
	"dialogue-navigator/internal/console"
	"dialogue-navigator/internal/content"
	optionmatcher "dialogue-navigator/internal/engine/option-matcher"
	"dialogue-navigator/internal/engine/traversal"
	"dialogue-navigator/pkg/dialogue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	fs := pflag.NewFlagSet("chatbot", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "config load failed: %v\n", err)
		return 1
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(stderr, "logger init failed: %v\n", err)
		return 1
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"environment": cfg.App.Environment,
	})
	errHandler := apperrors.NewErrorHandler(log)

	tree, err := loadTree(cfg.Session.TreePath)
	if err != nil {
		fmt.Fprintf(stderr, "dialogue tree load failed: %v\n", err)
		return errHandler.Report(err)
	}
	zapLog.Debug("dialogue tree loaded", zap.String("source", treeSource(cfg.Session.TreePath)))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	obs := observability.New(cfg.App.Name, reg, log)
	defer obs.Shutdown()

	presenter := console.NewPresenter(stdout, tree, console.Options{
		Color:   console.ColorEnabled(cfg.Console.Color, stdout),
		Markers: cfg.Console.Markers,
	})
	matcher := optionmatcher.NewMatcher(&optionmatcher.Config{
		FuzzyCutoff:      cfg.Matcher.FuzzyCutoff,
		KeywordMinLength: cfg.Matcher.KeywordMinLength,
	}, log)
	handler := traversal.NewHandler(
		&traversal.Config{LeafMode: cfg.Session.LeafMode},
		stdin, presenter, matcher, m, obs, log,
	)

	summary, runErr := handler.Run(ctx, tree)
	if runErr != nil && ctx.Err() != nil {
		// interrupted by a signal; not a failure
		runErr = nil
	}

	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath, reg); err != nil {
			errHandler.Report(err)
		}
	}

	zapLog.Info("session summary",
		zap.String("sessionId", summary.SessionID),
		zap.Int("turns", summary.Turns),
		zap.Int("invalid", summary.Invalid),
		zap.String("endReason", summary.EndReason),
	)

	return errHandler.Report(runErr)
}

func loadTree(path string) (*dialogue.Tree, error) {
	if path == "" {
		return content.Default()
	}
	return dialogue.Load(path)
}

func treeSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
