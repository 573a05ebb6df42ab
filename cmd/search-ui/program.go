package main

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/steeef/search-ui/internal/dispatch"
	"github.com/steeef/search-ui/internal/render"
)

// program is the bubbletea model: it owns nothing beyond the
// dispatcher and the terminal size, mirroring the teacher's split
// between a thin Model and the state that actually drives it.
type program struct {
	dispatch *dispatch.Dispatcher
	logger   *slog.Logger
	width    int
	height   int
}

func newProgram(d *dispatch.Dispatcher, logger *slog.Logger) *program {
	return &program{dispatch: d, logger: logger, width: 80, height: 24}
}

func (p *program) Init() tea.Cmd { return nil }

func (p *program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.dispatch.VisibleRows = (p.height - 8) / 3
		return p, nil
	case tea.KeyMsg:
		p.dispatch.Handle(msg)
		if p.dispatch.Quit() {
			return p, tea.Quit
		}
		return p, nil
	}
	return p, nil
}

func (p *program) View() string {
	return render.Frame(p.dispatch.VM, p.width, p.height, time.Now())
}
