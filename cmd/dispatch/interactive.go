package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/proxy"
	"github.com/wippyai/thread-proxy/sig"
	"github.com/wippyai/thread-proxy/track"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type stats struct {
	dispatched atomic.Int64
	executed   atomic.Int64
	inflight   atomic.Int64
}

type interactiveModel struct {
	reg       *proxy.Registry
	worker    *proxy.Thread
	stats     *stats
	counter   *atomic.Int64
	input     textinput.Model
	errMsg    string
	stopDrain chan struct{}
	drainDone chan struct{}
}

type tickMsg time.Time

func newInteractiveModel() *interactiveModel {
	reg := proxy.NewRegistry()
	st := &stats{}

	// Observe waitable handle lifecycle for the in-flight gauge.
	reg.Waitable().Subscribe(func(e track.Event[*proxy.Call]) {
		switch e.Type {
		case track.EventCreated:
			st.inflight.Add(1)
		case track.EventDropped:
			st.inflight.Add(-1)
		}
	})

	counter := &atomic.Int64{}
	host := reg.Host()
	stopDrain := make(chan struct{})
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			select {
			case <-stopDrain:
				return
			default:
				host.Sleep(5 * time.Millisecond)
			}
		}
	}()

	ti := textinput.New()
	ti.Placeholder = "number of calls to dispatch"
	ti.Focus()
	ti.CharLimit = 8
	ti.Width = 30

	return &interactiveModel{
		reg:       reg,
		worker:    reg.NewThread("tui-worker"),
		stats:     st,
		counter:   counter,
		input:     ti,
		stopDrain: stopDrain,
		drainDone: drainDone,
	}
}

// shutdown stops the host drain goroutine, waits for its final drain and
// closes the registry.
func (m *interactiveModel) shutdown() {
	close(m.stopDrain)
	<-m.drainDone
	m.reg.Close()
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.errMsg = ""
			n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			if err != nil || n <= 0 {
				m.errMsg = "enter a positive integer"
				return m, nil
			}
			m.input.SetValue("")
			m.dispatch(n)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// dispatch issues n waitable increments at the host thread and collects
// them on a background goroutine so the TUI loop never blocks.
func (m *interactiveModel) dispatch(n int) {
	sigII := sig.MustEncode(sig.RetInt, sig.ParamInt)
	host := m.reg.Host()
	bump := func(args []threadproxy.Arg) threadproxy.Ret {
		m.stats.executed.Add(1)
		return threadproxy.RetOfInt(int32(m.counter.Add(int64(args[0].Int()))))
	}

	go func() {
		for i := 0; i < n; i++ {
			c, err := m.worker.CallAsyncWaitable(host, sigII, bump, threadproxy.Int(1))
			if err != nil {
				return
			}
			m.stats.dispatched.Add(1)
			if _, _, err := c.Wait(-1); err == nil {
				c.Close()
			}
		}
	}()
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("thread-proxy dispatch demo"))
	b.WriteString("\n\n")

	row := func(label string, v int64) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%d", v)))
		b.WriteByte('\n')
	}
	row("dispatched", m.stats.dispatched.Load())
	row("executed", m.stats.executed.Load())
	row("in flight", m.stats.inflight.Load())
	row("counter", m.counter.Load())

	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("  " + m.errMsg))
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("\n  enter: dispatch • esc: quit\n"))
	return b.String()
}

func runInteractive() error {
	m := newInteractiveModel()
	defer m.shutdown()

	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}
