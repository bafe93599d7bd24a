// internal/console/presenter.go
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"dialogue-navigator/internal/common/config"
	"dialogue-navigator/pkg/dialogue"
)

const (
	bannerText   = "Welcome to the Ultimate Chatbot Experience!"
	inputHint    = "Your choice (or type 'switch', 'restart', or 'exit'): "
	invalidText  = "Invalid choice. Please try again."
	leafText     = "💬 That’s all I have to share on that topic."
	leafHint     = "Type 'menu' to switch characters, or 'exit' to quit: "
	farewellText = "👋 Thank you for chatting! Skadoosh and stay awesome!"
	goodbyeText  = "👋 Goodbye!"
	restartText  = "🔁 Restarting conversation..."
	switchText   = "🔄 Switching characters..."
)

// Options controls presentation.
type Options struct {
	Color   bool
	Markers bool
}

// Presenter renders the conversation to a writer. The first write error is
// kept and every later call becomes a no-op; check Err after a turn.
type Presenter struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	speakers []dialogue.SpeakerRule
	markers  []dialogue.MarkerRule
	opts     Options
	err      error
}

// NewPresenter builds a Presenter using the speaker and marker rules shipped
// with tree. tree may be nil.
func NewPresenter(w io.Writer, tree *dialogue.Tree, opts Options) *Presenter {
	p := &Presenter{
		w:        w,
		renderer: lipgloss.NewRenderer(w),
		opts:     opts,
	}
	if tree != nil {
		p.speakers = tree.Speakers
		p.markers = tree.Markers
	}
	return p
}

// ColorEnabled resolves a console.color setting against w. "auto" colors
// only terminals.
func ColorEnabled(mode string, w io.Writer) bool {
	if mode == config.ColorNever {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (p *Presenter) Err() error {
	return p.err
}

func (p *Presenter) Banner() {
	p.println(bannerText)
}

// Node prints the prompt followed by every option in order.
func (p *Presenter) Node(n *dialogue.Node) {
	p.println("\n" + n.Prompt)
	for _, opt := range n.Options {
		if p.opts.Markers {
			p.printf("%s %s. %s\n", Marker(p.markers, opt.Text), opt.Key, opt.Text)
		} else {
			p.printf("%s. %s\n", opt.Key, opt.Text)
		}
	}
}

func (p *Presenter) InputHint() {
	p.printf("%s", inputHint)
}

// Response prints text attributed to the detected speaker. Empty responses
// print nothing.
func (p *Presenter) Response(text string) {
	if text == "" {
		return
	}
	rule, _ := Speaker(p.speakers, text)
	line := fmt.Sprintf("%s: %s", rule.Name, text)
	if p.opts.Color && rule.Color != "" {
		line = p.renderer.NewStyle().Foreground(lipgloss.Color(rule.Color)).Render(line)
	}
	p.println("\n" + line)
}

func (p *Presenter) Invalid() {
	p.println("\n" + invalidText)
}

// Restart announces a jump back to the main menu triggered by command.
func (p *Presenter) Restart(command string) {
	if command == "restart" {
		p.println(restartText)
		return
	}
	p.println(switchText)
}

func (p *Presenter) LeafPrompt() {
	p.println("\n" + leafText)
	p.printf("%s", leafHint)
}

func (p *Presenter) Farewell() {
	p.println(farewellText)
}

// EndOfInput ends a session whose input ran out mid-prompt.
func (p *Presenter) EndOfInput() {
	p.println("\n" + farewellText)
}

func (p *Presenter) Goodbye() {
	p.println(goodbyeText)
}

func (p *Presenter) println(s string) {
	p.printf("%s\n", s)
}

func (p *Presenter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
