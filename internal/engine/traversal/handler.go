// internal/engine/traversal/handler.go
package traversal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dialogue-navigator/internal/common/config"
	apperrors "dialogue-navigator/internal/common/errors"
	"dialogue-navigator/internal/common/logger"
	"dialogue-navigator/internal/common/metrics"
	optionmatcher "dialogue-navigator/internal/engine/option-matcher"
	"dialogue-navigator/pkg/dialogue"
)

const maxLineSize = 1 << 20

// Presenter renders the conversation. Write failures are reported by Err.
type Presenter interface {
	Banner()
	Node(n *dialogue.Node)
	InputHint()
	Response(text string)
	Invalid()
	Restart(command string)
	LeafPrompt()
	Farewell()
	Goodbye()
	EndOfInput()
	Err() error
}

// OptionMatcher resolves raw input against the options of the current node.
type OptionMatcher interface {
	Match(raw string, options []dialogue.Option) optionmatcher.Result
}

// SessionRecorder receives session-level measurements.
type SessionRecorder interface {
	RecordSessionCompleted(ctx context.Context, endReason string)
	RecordSessionDuration(ctx context.Context, duration time.Duration, endReason string)
}

type Handler struct {
	config    *Config
	in        *bufio.Scanner
	lines     chan readResult
	startRead sync.Once
	presenter Presenter
	matcher   OptionMatcher
	metrics   *metrics.Metrics
	recorder  SessionRecorder
	logger    logger.Logger
}

// NewHandler builds a Handler reading one line per turn from in. m and rec
// may be nil. A Handler runs one session at a time.
func NewHandler(cfg *Config, in io.Reader, p Presenter, matcher OptionMatcher, m *metrics.Metrics, rec SessionRecorder, log logger.Logger) *Handler {
	if cfg == nil {
		cfg = LoadConfig()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	strategies := make([]string, len(optionmatcher.Strategies))
	for i, st := range optionmatcher.Strategies {
		strategies[i] = string(st)
	}
	m.InitMatches(strategies...)

	return &Handler{
		config:    cfg,
		in:        scanner,
		lines:     make(chan readResult),
		presenter: p,
		matcher:   matcher,
		metrics:   m,
		recorder:  rec,
		logger:    log.WithFields(map[string]interface{}{"component": "traversal"}),
	}
}

type readResult struct {
	line string
	err  error
}

// session is the transient state of one Run: the node being shown and its
// path from the root.
type session struct {
	root    *dialogue.Node
	current *dialogue.Node
	path    string
	summary Summary
	started time.Time
	logger  logger.Logger
}

func (s *session) descend(opt dialogue.Option) {
	s.path = fmt.Sprintf("%s.options[%s].followup", s.path, opt.Key)
	s.current = opt.Followup
}

func (s *session) toRoot() {
	s.current = s.root
	s.path = "root"
}

// Run drives a session over tree until the user exits, input ends, or ctx
// is cancelled. Unmatched input is never an error.
func (h *Handler) Run(ctx context.Context, tree *dialogue.Tree) (Summary, error) {
	if tree == nil || tree.Root == nil {
		return Summary{}, apperrors.NewTreeValidationFailedError([]string{"root: missing"})
	}

	id := uuid.NewString()
	s := &session{
		root:    tree.Root,
		current: tree.Root,
		path:    "root",
		summary: Summary{SessionID: id},
		started: time.Now(),
		logger:  h.logger.WithFields(map[string]interface{}{"sessionId": id}),
	}
	s.logger.Info("session started", map[string]interface{}{
		"leafMode": h.config.LeafMode,
	})

	h.presenter.Banner()

	for {
		if err := ctx.Err(); err != nil {
			return h.fail(ctx, s, err)
		}

		h.presenter.Node(s.current)
		h.presenter.InputHint()
		if err := h.presenter.Err(); err != nil {
			return s.summary, apperrors.NewOutputWriteFailedError(err)
		}

		line, ok, err := h.readLine(ctx)
		if err != nil {
			return h.fail(ctx, s, err)
		}
		if !ok {
			h.presenter.EndOfInput()
			h.end(ctx, s, EndEOF)
			return s.summary, h.writeErr()
		}

		s.summary.Turns++
		reason, done, err := h.turn(ctx, s, line)
		if err != nil {
			return h.fail(ctx, s, err)
		}
		if done {
			h.end(ctx, s, reason)
			return s.summary, h.writeErr()
		}
	}
}

// turn handles one line entered at a node prompt.
func (h *Handler) turn(ctx context.Context, s *session, line string) (string, bool, error) {
	raw := strings.TrimSpace(line)

	switch cmd := optionmatcher.Normalize(raw); cmd {
	case CommandExit, CommandQuit:
		h.metrics.RecordTurn(metrics.OutcomeCommand)
		h.presenter.Farewell()
		return EndExit, true, nil
	case CommandRestart, CommandSwitch, CommandMenu:
		h.metrics.RecordTurn(metrics.OutcomeCommand)
		h.presenter.Restart(cmd)
		h.metrics.RecordNavigation(metrics.NavigationRoot)
		s.logger.Debug("returning to root", map[string]interface{}{"command": cmd, "from": s.path})
		s.toRoot()
		return "", false, nil
	}

	res := h.matcher.Match(raw, s.current.Options)
	s.logger.Debug("turn", map[string]interface{}{
		"path":     s.path,
		"input":    raw,
		"strategy": string(res.Strategy),
		"key":      res.Key,
	})

	if !res.Matched {
		s.summary.Invalid++
		h.metrics.RecordTurn(metrics.OutcomeInvalid)
		h.presenter.Invalid()
		return "", false, nil
	}
	h.metrics.RecordTurn(metrics.OutcomeMatched)
	h.metrics.RecordMatch(string(res.Strategy))

	opt, ok := s.current.Option(res.Key)
	if !ok {
		return "", false, apperrors.Normalize(fmt.Errorf("matcher returned unknown key %q at %s", res.Key, s.path))
	}
	h.presenter.Response(opt.Response)

	switch opt.Kind {
	case dialogue.KindFollowup:
		h.metrics.RecordNavigation(metrics.NavigationFollowup)
		s.descend(opt)
		return "", false, nil
	case dialogue.KindReturnToRoot:
		h.metrics.RecordNavigation(metrics.NavigationRoot)
		s.toRoot()
		return "", false, nil
	}

	if h.config.LeafMode == config.LeafModeStay {
		h.metrics.RecordNavigation(metrics.NavigationStay)
		return "", false, nil
	}
	return h.leafPrompt(ctx, s)
}

// leafPrompt offers the menu or exit after a leaf response. Anything else
// redisplays the current node.
func (h *Handler) leafPrompt(ctx context.Context, s *session) (string, bool, error) {
	h.presenter.LeafPrompt()
	if err := h.presenter.Err(); err != nil {
		return "", false, apperrors.NewOutputWriteFailedError(err)
	}

	line, ok, err := h.readLine(ctx)
	if err != nil {
		return "", false, err
	}
	if !ok {
		h.presenter.EndOfInput()
		return EndEOF, true, nil
	}

	switch optionmatcher.Normalize(line) {
	case CommandMenu:
		h.metrics.RecordNavigation(metrics.NavigationRoot)
		s.toRoot()
	case CommandExit, CommandQuit:
		h.presenter.Goodbye()
		return EndExit, true, nil
	default:
		h.metrics.RecordNavigation(metrics.NavigationStay)
	}
	return "", false, nil
}

// readLine waits for the next input line or for ctx to be done, whichever
// comes first. ok is false at end of input.
func (h *Handler) readLine(ctx context.Context) (string, bool, error) {
	h.startRead.Do(func() { go h.scan() })

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case r, open := <-h.lines:
		if !open {
			return "", false, nil
		}
		if r.err != nil {
			return "", false, apperrors.NewInputReadFailedError(r.err)
		}
		// a line racing with cancellation is dropped
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		return r.line, true, nil
	}
}

// scan feeds h.lines until the input ends. It outlives a cancelled Run while
// blocked in a read.
func (h *Handler) scan() {
	defer close(h.lines)
	for h.in.Scan() {
		h.lines <- readResult{line: h.in.Text()}
	}
	if err := h.in.Err(); err != nil {
		h.lines <- readResult{err: err}
	}
}

// fail ends a cancelled session before passing err on.
func (h *Handler) fail(ctx context.Context, s *session, err error) (Summary, error) {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		h.end(ctx, s, EndCancelled)
	}
	return s.summary, err
}

func (h *Handler) writeErr() error {
	if err := h.presenter.Err(); err != nil {
		return apperrors.NewOutputWriteFailedError(err)
	}
	return nil
}

func (h *Handler) end(ctx context.Context, s *session, reason string) {
	s.summary.EndReason = reason
	s.summary.Path = s.path
	h.metrics.RecordNavigation(metrics.NavigationEnd)

	if h.recorder != nil {
		// cancellation must not drop the session measurements
		recCtx := context.WithoutCancel(ctx)
		h.recorder.RecordSessionCompleted(recCtx, reason)
		h.recorder.RecordSessionDuration(recCtx, time.Since(s.started), reason)
	}

	s.logger.Info("session ended", map[string]interface{}{
		"endReason": reason,
		"turns":     s.summary.Turns,
		"invalid":   s.summary.Invalid,
		"path":      s.path,
	})
}
