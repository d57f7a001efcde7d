package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/widgets"
)

// actionTimeout bounds a key action waiting on the engine goroutine.
const actionTimeout = 500 * time.Millisecond

// Tempo is implemented by clocks whose tempo can be changed.
type Tempo interface {
	BPM() int
	SetBPM(bpm int)
}

type Model struct {
	Engine    *sequencer.Engine
	DeviceMgr *midi.DeviceManager // may be nil
	Tempo     Tempo               // nil when following an external clock
	Theme     *theme.Theme
	OutName   string

	help     help.Model
	amount   int
	sel      int
	status   string
	quitting bool
}

type UpdateMsg struct{}

func NewModel(eng *sequencer.Engine, deviceMgr *midi.DeviceManager, tempo Tempo, th *theme.Theme) Model {
	return Model{
		Engine:    eng,
		DeviceMgr: deviceMgr,
		Tempo:     tempo,
		Theme:     th,
		help:      help.New(),
		amount:    16,
		sel:       sequencer.SelectAll,
	}
}

// SetRandomizer sets the amount and category used by the randomize key.
func (m *Model) SetRandomizer(amount, sel int) {
	m.amount = amount
	if _, ok := sequencer.SelectMask(sel); ok {
		m.sel = sel
	}
}

func ListenForUpdates(eng *sequencer.Engine) tea.Cmd {
	return func() tea.Msg {
		<-eng.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Engine)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Engine)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.Engine.Snapshot()
	arp, pitch := st.Arp, st.Pitch

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.TempoUp, keys.TempoDown):
		if m.Tempo == nil {
			m.status = "tempo follows external clock"
			return m, nil
		}
		delta := 5
		if key.Matches(msg, keys.TempoDown) {
			delta = -5
		}
		m.Tempo.SetBPM(m.Tempo.BPM() + delta)
		return m, nil

	case key.Matches(msg, keys.Category):
		m.sel = (m.sel + 1) % sequencer.NumSelects
		return m, nil

	case key.Matches(msg, keys.AmountUp):
		m.amount = min(m.amount+4, 127)
		return m, nil

	case key.Matches(msg, keys.AmountDown):
		m.amount = max(m.amount-4, 0)
		return m, nil
	}

	style, _ := sequencer.ParseStyle(arp.Style)
	retrig, _ := sequencer.ParseRetrigger(arp.Retrigger)
	eng := m.Engine
	var fn func()
	switch {
	case key.Matches(msg, keys.Style):
		fn = func() { eng.Arp.SetStyle((style + 1) % sequencer.NumStyles) }
	case key.Matches(msg, keys.StyleBack):
		fn = func() { eng.Arp.SetStyle((style + sequencer.NumStyles - 1) % sequencer.NumStyles) }
	case key.Matches(msg, keys.Faster):
		fn = func() { eng.Arp.SetSpeed(arp.Speed - 1) }
	case key.Matches(msg, keys.Slower):
		fn = func() { eng.Arp.SetSpeed(arp.Speed + 1) }
	case key.Matches(msg, keys.OctaveUp):
		fn = func() { eng.Arp.SetOctaves(arp.Octaves + 1) }
	case key.Matches(msg, keys.OctaveDown):
		fn = func() { eng.Arp.SetOctaves(arp.Octaves - 1) }
	case key.Matches(msg, keys.TimesUp):
		fn = func() { eng.Arp.SetTimes(arp.Times + 1) }
	case key.Matches(msg, keys.TimesDown):
		fn = func() { eng.Arp.SetTimes(arp.Times - 1) }
	case key.Matches(msg, keys.Retrigger):
		fn = func() { eng.Arp.SetRetrigger((retrig+1)%sequencer.NumRetrigs, arp.RetrigSpeed) }
	case key.Matches(msg, keys.Release):
		fn = func() { eng.Arp.ReleaseAll() }

	case key.Matches(msg, keys.Pulses):
		fn = func() { eng.Pitch.Euclid.Set(pitch.Pulses+1, pitch.Steps, pitch.Rotation) }
	case key.Matches(msg, keys.PulsesDown):
		fn = func() { eng.Pitch.Euclid.Set(pitch.Pulses-1, pitch.Steps, pitch.Rotation) }
	case key.Matches(msg, keys.Steps):
		fn = func() { eng.Pitch.Euclid.Set(pitch.Pulses, pitch.Steps+1, pitch.Rotation) }
	case key.Matches(msg, keys.StepsDown):
		fn = func() { eng.Pitch.Euclid.Set(pitch.Pulses, pitch.Steps-1, pitch.Rotation) }
	case key.Matches(msg, keys.Rotate):
		fn = func() { eng.Pitch.Euclid.Set(pitch.Pulses, pitch.Steps, pitch.Rotation+1) }
	case key.Matches(msg, keys.Scale):
		fn = func() { eng.Pitch.SetScale((pitch.ScaleIndex + 1) % sequencer.NumScales) }
	case key.Matches(msg, keys.Redraw):
		fn = func() { eng.Pitch.Randomize() }
	case key.Matches(msg, keys.Mute):
		fn = func() { eng.Pitch.SetMuted(!pitch.Muted) }

	case key.Matches(msg, keys.Randomize):
		amount, sel := m.amount, m.sel
		fn = func() { eng.Random.Randomize(amount, sel) }
		m.status = fmt.Sprintf("randomized %s by %d", sequencer.SelectName(sel), amount)
	case key.Matches(msg, keys.Undo):
		var undone bool
		if !m.apply(func() { undone = eng.Random.Undo() }) {
			return m, nil
		}
		m.status = "undo"
		if !undone {
			m.status = "nothing to undo"
		}
		return m, nil
	case key.Matches(msg, keys.TrackNext):
		fn = func() { eng.Random.SetTrack(st.Track + 1) }
	case key.Matches(msg, keys.TrackPrev):
		fn = func() { eng.Random.SetTrack(st.Track - 1) }

	case key.Matches(msg, keys.Arm):
		fn = func() { eng.Phrase.Arm(eng.Counter()) }
	case key.Matches(msg, keys.Play):
		fn = func() { eng.Phrase.Play(eng.Counter()) }
	case key.Matches(msg, keys.StopPhrase):
		fn = func() { eng.Phrase.Stop() }
	}

	if fn != nil {
		m.apply(fn)
	}
	return m, nil
}

// apply runs fn on the engine and publishes the result at once so the next
// View sees it. It reports false when the engine did not run fn in time;
// fn may then still run later, so nothing it writes can be read.
func (m *Model) apply(fn func()) bool {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	err := m.Engine.Do(ctx, func() {
		fn()
		m.Engine.Publish()
	})
	if err != nil {
		m.status = "engine busy"
		debug.Log("tui", "action dropped: %v", err)
		return false
	}
	return true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.Engine.Snapshot()
	th := m.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(th.Active())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(th.FG()).Background(th.Muted()).Padding(0, 1)

	tempo := "EXT"
	if m.Tempo != nil {
		tempo = fmt.Sprintf("%3dbpm", m.Tempo.BPM())
	}
	header := headerStyle.Render(fmt.Sprintf("go-arp  %s  tick:%06d  out:%s", tempo, st.Counter, m.OutName))

	// Arpeggiator
	a := st.Arp
	held := make([]int, len(a.Held))
	for i, n := range a.Held {
		held[i] = int(n.Pitch)
	}
	sort.Ints(held)
	arpView := strings.Join([]string{
		titleStyle.Render("ARPEGGIATOR") + dimStyle.Render(fmt.Sprintf("  ch%d", a.Channel+1)),
		fmt.Sprintf("%-8s speed %d  oct %d  x%d  retrig %s/%d", a.Style, a.Speed, a.Octaves, a.Times, a.Retrigger, a.RetrigSpeed),
		"held   " + widgets.RenderNotes(th, held, -1),
		"buffer " + widgets.RenderNotes(th, a.Buffer, lastStep(a.Cursor.Step, len(a.Buffer))),
	}, "\n")

	// Pitch sequencer
	p := st.Pitch
	mute := ""
	if p.Muted {
		mute = "  MUTED"
	}
	gate := fmt.Sprintf("gate %d", p.NoteLength)
	if p.NoteLength == 0 {
		gate = "off"
	}
	euclidView := strings.Join([]string{
		titleStyle.Render("EUCLID") + dimStyle.Render(fmt.Sprintf("  ch%d%s", p.Channel+1, mute)),
		fmt.Sprintf("%d/%d rot %d  %s  %s  base %s", p.Pulses, p.Steps, p.Rotation, p.Scale, gate, widgets.NoteName(p.BasePitch)),
		widgets.RenderSteps(th, p.Pattern, int(st.Counter+uint32(p.Steps)-1)%max(p.Steps, 1)),
		widgets.RenderNotes(th, p.Pitches, lastStep(p.Cursor, len(p.Pitches))),
	}, "\n")

	// Phrase
	ph := st.Phrase
	phraseView := strings.Join([]string{
		titleStyle.Render("PHRASE") + dimStyle.Render(fmt.Sprintf("  %s  %d steps  ch%d", ph.Mode, ph.Length, ph.Channel+1)),
		widgets.RenderNotes(th, ph.Pitches, -1),
	}, "\n")

	// Randomizer
	mask, _ := sequencer.SelectMask(m.sel)
	names := make([]string, sequencer.NumParams)
	for i := range names {
		names[i] = sequencer.ParamName(i)
	}
	params := st.Params[:]
	left := widgets.RenderParamBars(th, names[:12], params[:12], mask.Has)
	right := widgets.RenderParamBars(th, names[12:], params[12:], func(i int) bool { return mask.Has(i + 12) })
	randomView := strings.Join([]string{
		titleStyle.Render("RANDOMIZER") + dimStyle.Render(fmt.Sprintf("  track %d  %s ±%d  undo %d", st.Track+1, sequencer.SelectName(m.sel), m.amount, st.Undo)),
		widgets.Columns(left, right),
	}, "\n")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.inputsLine()))
	out.WriteString("\n\n")
	out.WriteString(widgets.Columns(arpView, euclidView))
	out.WriteString("\n\n")
	out.WriteString(phraseView)
	out.WriteString("\n\n")
	out.WriteString(randomView)
	out.WriteString("\n\n")
	out.WriteString(m.help.View(keys))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}

func (m Model) inputsLine() string {
	if m.DeviceMgr == nil {
		return "in: none"
	}
	inputs := m.DeviceMgr.Inputs()
	if len(inputs) == 0 {
		return "in: waiting for devices"
	}
	names := make([]string, 0, len(inputs))
	for id := range inputs {
		names = append(names, id)
	}
	sort.Strings(names)
	return "in: " + strings.Join(names, ", ")
}

// lastStep returns the index played most recently given the next index.
func lastStep(next, n int) int {
	if n == 0 {
		return -1
	}
	return (next + n - 1) % n
}
