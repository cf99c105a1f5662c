// Package tui hosts the live grid search view.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/lvfit/internal/fit"
	"github.com/san-kum/lvfit/internal/optim"
	"github.com/san-kum/lvfit/internal/viz"
)

const barWidth = 40

// EvalMsg reports one scored grid point.
type EvalMsg optim.Evaluation

// DoneMsg ends the search.
type DoneMsg struct {
	Result *fit.Result
	Err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// FitModel tracks grid search progress. The running best is only a preview;
// the authoritative result arrives with DoneMsg.
type FitModel struct {
	total     int
	done      int
	best      float64
	bestPoint map[string]float64
	frame     int
	started   time.Time
	cancel    context.CancelFunc

	result   *fit.Result
	err      error
	finished bool
	aborted  bool
}

func NewFitModel(total int, cancel context.CancelFunc) FitModel {
	return FitModel{
		total:   total,
		best:    math.Inf(1),
		started: time.Now(),
		cancel:  cancel,
	}
}

func (m FitModel) Init() tea.Cmd { return tick() }

func (m FitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case EvalMsg:
		m.done++
		if msg.Value < m.best {
			m.best = msg.Value
			m.bestPoint = msg.Point
		}
	case DoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	case tickMsg:
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m FitModel) Progress() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m FitModel) Result() (*fit.Result, error) { return m.result, m.err }

func (m FitModel) Aborted() bool { return m.aborted }

func (m FitModel) View() string {
	var b strings.Builder

	b.WriteString(viz.Title.Render("grid search"))
	b.WriteString("\n\n")

	spinner := viz.AnimatedSpinner(m.frame)
	if m.finished {
		spinner = "✓"
	}
	fmt.Fprintf(&b, "%s %s %s\n", spinner, viz.ProgressBar(m.Progress(), barWidth),
		viz.MetricValue.Render(fmt.Sprintf("%d/%d", m.done, m.total)))

	if m.bestPoint != nil {
		p := fit.Params{
			Alpha: m.bestPoint["alpha"],
			Beta:  m.bestPoint["beta"],
			Gamma: m.bestPoint["gamma"],
			Delta: m.bestPoint["delta"],
		}
		fmt.Fprintf(&b, "\n%s %s\n", viz.MetricLabel.Render("best so far"), viz.MetricValue.Render(p.String()))
		fmt.Fprintf(&b, "%s %s\n", viz.MetricLabel.Render("error      "), viz.MetricValue.Render(fmt.Sprintf("%g", m.best)))
	}

	b.WriteString("\n" + viz.Subtle.Render("elapsed "+time.Since(m.started).Round(time.Second).String()) + "\n")
	if m.err != nil {
		b.WriteString("\n" + viz.ErrorText.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + viz.KeyHint.Render("q: cancel"))
	return viz.Panel.Render(b.String())
}

// RunFit drives search inside a Bubble Tea program. search receives a
// cancellable context and a progress callback that forwards every scored
// point to the view.
func RunFit(ctx context.Context, total int, search func(ctx context.Context, progress func(optim.Evaluation)) (*fit.Result, error)) (*fit.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewFitModel(total, cancel))

	go func() {
		res, err := search(ctx, func(e optim.Evaluation) { p.Send(EvalMsg(e)) })
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(FitModel)
	if m.Aborted() {
		return nil, context.Canceled
	}
	return m.Result()
}
