package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"vizbot/app/services"
)

// jobRow is the displayed state of one batch job.
type jobRow struct {
	Name    string
	Stage   services.BatchStage
	Encoder string
	Err     error
}

// Model is the batch monitor: it mirrors the scheduler's event stream into
// a per-job table.
type Model struct {
	events <-chan services.BatchEvent

	Jobs     []jobRow
	Total    int
	Done     int
	Failed   int
	Finished bool
}

// NewModel creates a monitor over a scheduler event channel. The model
// considers the batch finished when the channel closes.
func NewModel(events <-chan services.BatchEvent, total int) Model {
	return Model{
		events: events,
		Jobs:   make([]jobRow, total),
		Total:  total,
	}
}

// eventMsg delivers one scheduler event into the update loop.
type eventMsg services.BatchEvent

// batchFinishedMsg signals that the scheduler closed the event channel.
type batchFinishedMsg struct{}

// waitForEvent blocks on the scheduler channel as a tea command.
func waitForEvent(events <-chan services.BatchEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return batchFinishedMsg{}
		}
		return eventMsg(ev)
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// apply folds one scheduler event into the job table.
func (m Model) apply(ev services.BatchEvent) Model {
	if ev.Index < 0 || ev.Index >= len(m.Jobs) {
		return m
	}
	row := &m.Jobs[ev.Index]
	row.Name = filepath.Base(ev.Request.OutputPath)
	row.Stage = ev.Stage
	row.Err = ev.Err
	if ev.Result != nil {
		row.Encoder = ev.Result.Encoder
	}

	switch ev.Stage {
	case services.StageDone, services.StageSkipped:
		m.Done++
	case services.StageError:
		m.Failed++
	}
	return m
}

// Run starts the monitor and blocks until the batch finishes or the user
// quits.
func Run(events <-chan services.BatchEvent, total int) error {
	p := tea.NewProgram(NewModel(events, total))
	_, err := p.Run()
	return err
}
