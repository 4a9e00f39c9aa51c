package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mixdesk/mixdesk"
	"github.com/mixdesk/mixdesk/api"
	"github.com/mixdesk/mixdesk/internal/config"
)

const (
	volumeStep = 0.05
	panStep    = 0.1
)

// Model is the main bubbletea model
type Model struct {
	width  int
	height int

	mixer    *mixdesk.Mixer
	keys     config.KeyMap
	fade     time.Duration
	selected int
	err      error

	headerStyle   lipgloss.Style
	stripStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	mutedStyle    lipgloss.Style
	statusStyle   lipgloss.Style
}

// TickMsg is sent periodically to refresh the console view
type TickMsg time.Time

// NewModel creates the console model
func NewModel(mixer *mixdesk.Mixer, cfg *config.Config) Model {
	fade := time.Duration(cfg.DefaultFadeMs) * time.Millisecond

	return Model{
		width:  80,
		height: 24,
		mixer:  mixer,
		keys:   cfg.KeyBindings,
		fade:   fade,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		stripStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")),
		selectedStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")),
		mutedStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("240")).
			Strikethrough(true),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that ticks every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	channels := m.mixer.Channels()

	switch msg.String() {
	case m.keys.Quit, "ctrl+c":
		return m, tea.Quit

	case m.keys.NextChannel:
		if m.selected < len(channels)-1 {
			m.selected++
		}
		return m, nil

	case m.keys.PrevChannel:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	}

	if m.selected >= len(channels) {
		return m, nil
	}
	ch := channels[m.selected]

	switch msg.String() {
	case m.keys.VolumeUp:
		ch.SetVolume(ch.Volume() + volumeStep)
	case m.keys.VolumeDown:
		ch.SetVolume(ch.Volume() - volumeStep)
	case m.keys.PanLeft:
		ch.SetPan(ch.Pan() - panStep)
	case m.keys.PanRight:
		ch.SetPan(ch.Pan() + panStep)
	case m.keys.Mute:
		ch.SetMuted(!ch.Muted())
	case m.keys.FadeIn:
		ch.FadeIn(m.fade)
	case m.keys.FadeOut:
		ch.FadeOut(m.fade)
	case m.keys.PlayPause:
		for _, t := range ch.Tracks() {
			if t.Playing() {
				t.Pause()
			} else {
				t.Play()
			}
		}
	}
	return m, nil
}

// View renders the console
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerStyle.Render(fmt.Sprintf("mixdesk | master %.2f", m.mixer.Volume())))
	b.WriteString("\n")

	channels := m.mixer.Channels()
	if len(channels) == 0 {
		b.WriteString(m.stripStyle.Render("no channels"))
		b.WriteString("\n")
	}

	for i, ch := range channels {
		style := m.stripStyle
		if ch.Muted() {
			style = m.mutedStyle
		}
		if i == m.selected {
			style = m.selectedStyle
		}

		fadeMark := " "
		if dir, ok := ch.Fading(); ok {
			fadeMark = "↘"
			if dir == api.FadeIn {
				fadeMark = "↗"
			}
		}

		strip := fmt.Sprintf("%-12s vol %.2f  pan %+.1f  eq %+.0f/%+.0f/%+.0f  pre %s %s",
			ch.ID(), ch.Volume(), ch.Pan(),
			ch.LowEQ(), ch.MidEQ(), ch.HighEQ(),
			gainBar(ch.PrefadeGain()), fadeMark)
		b.WriteString(style.Render(strip))
		b.WriteString("\n")
	}

	help := fmt.Sprintf("%s/%s volume  %s/%s pan  %s mute  %s/%s fade  %s play/pause  %s quit",
		m.keys.VolumeUp, m.keys.VolumeDown,
		m.keys.PanLeft, m.keys.PanRight,
		m.keys.Mute, m.keys.FadeIn, m.keys.FadeOut,
		strings.ReplaceAll(m.keys.PlayPause, " ", "space"), m.keys.Quit)
	b.WriteString(m.statusStyle.Render(help))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.statusStyle.Render("error: " + m.err.Error()))
	}

	return b.String()
}

// gainBar renders the pre-fade gain as a ten-step meter.
func gainBar(g float64) string {
	if g < 0 {
		g = 0
	}
	if g > 1 {
		g = 1
	}
	filled := int(g*10 + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}

// Run starts the console UI
func Run(mixer *mixdesk.Mixer, cfg *config.Config) error {
	p := tea.NewProgram(NewModel(mixer, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
