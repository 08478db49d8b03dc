package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/slabkit/slabkit/pool"
)

// tickMsg triggers a stats refresh.
type tickMsg time.Time

// model is the Bubbletea state: the watched pool, the background workload
// and the last sampled snapshot.
type model struct {
	p        *pool.Pool
	work     *workload
	workers  int
	interval time.Duration

	stats   pool.Stats
	allocs  uint64
	frees   uint64
	running bool

	width  int
	height int

	pr *message.Printer
}

func newModel(p *pool.Pool, workers, size, keep int, interval time.Duration) model {
	return model{
		p:        p,
		work:     newWorkload(p, size, keep),
		workers:  workers,
		interval: interval,
		running:  true,
		pr:       message.NewPrinter(language.English),
	}
}

func (m *model) start() {
	m.work.start(m.workers)
}

func (m model) stop() {
	m.work.stop()
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.stats = m.p.Stats()
		m.allocs = m.work.allocs.Load()
		m.frees = m.work.frees.Load()
		return m, m.tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.running = m.work.togglePause()
			return m, nil
		}
	}
	return m, nil
}
