package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/pkg/circuit"
	"github.com/matzehuels/cardstack/pkg/errors"
	"github.com/matzehuels/cardstack/pkg/finalize"
	"github.com/matzehuels/cardstack/pkg/mesh"
	"github.com/matzehuels/cardstack/pkg/render/sink"
	"github.com/matzehuels/cardstack/pkg/scene"
	"github.com/matzehuels/cardstack/pkg/session"
)

const (
	listWidth   = 30
	orbitStep   = 0.2
	zoomStep    = 1.25
	resultLines = 8
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	busyStyle         = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	errorStyle        = lipgloss.NewStyle().Foreground(colorRed)
)

type viewOpts struct {
	library  string
	endpoint string
	local    bool
}

// viewCommand starts the interactive stack builder.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [preset-id...]",
		Short: "Build a stack interactively",
		Long: `Build a stack in the terminal. Named presets are stacked first.

Keys:
  ↑/↓ j/k   select preset      enter/a   add preset on top
  d         remove top card    c         clear stack
  ←/→ h/l   orbit camera       +/-       zoom
  f         finalize           q         quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			lib, err := loadLibrary(opts.library)
			if err != nil {
				return err
			}
			finalizer, err := newFinalizer(&finalizeOpts{endpoint: opts.endpoint, local: opts.local}, logger)
			if err != nil {
				return err
			}

			s := session.New(scene.NewMemoryBackend(), finalizer, session.WithLogger(logger))
			defer s.Close()
			for _, id := range args {
				card, err := lib.Get(id)
				if err != nil {
					return err
				}
				if _, err := s.Add(ctx, card); err != nil {
					return err
				}
			}

			// The TUI owns the terminal; keep log lines out of it.
			level := logger.GetLevel()
			logger.SetLevel(log.FatalLevel)
			defer logger.SetLevel(level)

			p := tea.NewProgram(newStackModel(ctx, s, lib.All()),
				tea.WithContext(ctx),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.library, "library", "l", "", "extra TOML card library merged over the presets")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "finalize endpoint URL (default "+finalize.DefaultEndpoint+")")
	cmd.Flags().BoolVar(&opts.local, "local", false, "generate the algorithm in-process")

	return cmd
}

// =============================================================================
// StackModel - interactive stack builder
// =============================================================================

// finalizedMsg carries the display text of an asynchronous finalize.
type finalizedMsg struct {
	text string
}

// StackModel is the bubbletea model for the stack builder. Every mutation
// goes through the session, so each frame sees a fully rebuilt scene.
type StackModel struct {
	ctx     context.Context
	session *session.Session
	presets []circuit.Card
	cursor  int
	width   int
	height  int
	status  string
	failed  bool
}

func newStackModel(ctx context.Context, s *session.Session, presets []circuit.Card) StackModel {
	m := StackModel{
		ctx:     ctx,
		session: s,
		presets: presets,
		width:   100,
		height:  30,
	}
	m.resize()
	return m
}

func (m StackModel) Init() tea.Cmd {
	return nil
}

func (m StackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
	case finalizedMsg:
		switch {
		case strings.HasPrefix(msg.text, "Error: "):
			m.status, m.failed = "finalize failed", true
		default:
			m.setStatus("finalized", nil)
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m StackModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", "a":
		if len(m.presets) == 0 {
			return m, nil
		}
		placed, err := m.session.Add(m.ctx, m.presets[m.cursor])
		m.setStatus("added "+placed.ID, err)
	case "d", "backspace":
		n := m.session.Len()
		if n == 0 {
			return m, nil
		}
		removed, err := m.session.Remove(m.ctx, n-1)
		m.setStatus("removed "+removed.ID, err)
	case "c":
		m.setStatus("cleared", m.session.Clear(m.ctx))
	case "left", "h":
		m.session.Orbit(-orbitStep, 0)
	case "right", "l":
		m.session.Orbit(orbitStep, 0)
	case "+", "=":
		m.session.Zoom(1 / zoomStep)
	case "-":
		m.session.Zoom(zoomStep)
	case "f":
		p, err := m.session.BeginFinalize()
		if err != nil {
			m.setStatus("", err)
			return m, nil
		}
		m.status = "finalizing..."
		m.failed = false
		return m, m.finalize(p)
	}
	return m, nil
}

// finalize runs the remote call off the event loop. The stack is already
// frozen by BeginFinalize and stays frozen until Complete returns.
func (m StackModel) finalize(p *session.Pending) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return finalizedMsg{text: p.Complete(ctx)}
	}
}

func (m *StackModel) setStatus(ok string, err error) {
	if err != nil {
		m.status = errors.UserMessage(err)
		m.failed = true
		return
	}
	m.status = ok
	m.failed = false
}

// sceneSize is the character area left for the stack view.
func (m StackModel) sceneSize() (cols, rows int) {
	cols = max(m.width-listWidth-6, 10)
	rows = max(m.height-resultLines-6, 5)
	return cols, rows
}

func (m StackModel) resize() {
	cols, rows := m.sceneSize()
	m.session.Resize(cols, rows*2)
}

func (m StackModel) View() string {
	frame := m.session.Frame()
	cols, rows := m.sceneSize()

	list := paneStyle.Width(listWidth).Height(rows).Render(m.presetList(frame))
	view := paneStyle.Width(cols).Height(rows).Render(m.sceneView(frame, cols, rows))

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Card Stack"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d cards · extent %.2f", len(frame.Cards), frame.Layout.Extent)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, view))
	b.WriteString("\n")
	b.WriteString(m.statusLine(frame))
	b.WriteString("\n")
	if frame.Result != "" {
		b.WriteString(resultPreview(frame.Result, cols+listWidth))
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render("↑/↓ select  enter add  d remove  c clear  ←/→ orbit  +/- zoom  f finalize  q quit"))
	return b.String()
}

func (m StackModel) presetList(frame session.Frame) string {
	var b strings.Builder
	for i, c := range m.presets {
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(cursor + c.ID))
		b.WriteString(StyleDim.Render(" " + string(c.Variant)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("stack (top first)"))
	for i := len(frame.Cards) - 1; i >= 0; i-- {
		b.WriteString("\n")
		b.WriteString(StyleValue.Render(fmt.Sprintf("%d %s", i, frame.Cards[i].Name)))
	}
	return b.String()
}

func (m StackModel) sceneView(frame session.Frame, cols, rows int) string {
	cam := frame.Camera
	cam.Frame(frame.Layout.Extent)
	sc := sink.Scene{
		Layout: frame.Layout,
		Groups: frame.Groups,
		Links:  mesh.Resolve(frame.Cards).Links,
	}
	return sink.RenderText(sc, sink.WithCamera(&cam), sink.WithSize(cols, rows), sink.WithLinks())
}

func (m StackModel) statusLine(frame session.Frame) string {
	switch {
	case frame.Busy:
		return busyStyle.Render("● finalizing, stack is frozen")
	case m.failed:
		return errorStyle.Render(iconError + " " + m.status)
	case m.status != "":
		return styleIconSuccess.Render(iconSuccess) + " " + m.status
	default:
		return ""
	}
}

// resultPreview shows the first lines of a finalize result, cut to width
// display cells.
func resultPreview(text string, width int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > resultLines {
		lines = append(lines[:resultLines], fmt.Sprintf("… %d more lines", len(lines)-resultLines))
	}
	style := StyleValue
	if strings.HasPrefix(text, "Error: ") {
		style = errorStyle
	}
	return style.MaxWidth(width).Render(strings.Join(lines, "\n"))
}
