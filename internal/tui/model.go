package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Brutus1066/portr/internal/action"
	"github.com/Brutus1066/portr/internal/config"
	"github.com/Brutus1066/portr/internal/discover"
	"github.com/Brutus1066/portr/internal/docker"
	"github.com/Brutus1066/portr/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	filterChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5fd75f")). // Soft green
			Bold(true)

	actionMenuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")). // Amber
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)

	criticalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Background(lipgloss.Color("#3a3a3a")).
			Bold(true).
			Padding(0, 1)
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeSearching
	modeMenu
	modeExport
	modeConfirmKill
	modeConfirmCritical
	modeDetail
	modeHelp
)

// Discoverer is what the dashboard needs from the discovery engine.
type Discoverer interface {
	Discover(discover.Filter) (*model.Snapshot, error)
}

type killFunc func(*model.SnapshotEntry, action.Options) (*action.Result, error)

var exportFormats = []string{"json", "csv", "md"}

type Model struct {
	discoverer Discoverer
	kill       killFunc
	cfg        *config.Config

	mode     uiMode
	table    table.Model
	input    textinput.Model
	confirm  textinput.Model
	viewport viewport.Model

	snapshot *model.Snapshot
	visible  []model.SnapshotEntry
	// selKey tracks the selected row across refreshes so a snapshot replace
	// never silently moves the selection to a different process.
	selKey string

	protoFilter  string // "", "TCP", "UDP"
	dockerOnly   bool
	criticalOnly bool
	sortCol      string
	sortDesc     bool

	// target is captured when a confirmation opens. The kill acts on this
	// copy, never on whatever the cursor points at by the time the user
	// answers.
	target       *model.SnapshotEntry
	pendingForce bool

	statusMsg string
	statusErr bool
	exportIdx int

	width    int
	height   int
	version  string
	quitting bool
}

func NewModel(d Discoverer, kill killFunc, cfg *config.Config, version string) Model {
	columns := []table.Column{
		{Title: "Port", Width: 6},
		{Title: "Proto", Width: 6},
		{Title: "PID", Width: 8},
		{Title: "Process", Width: 20},
		{Title: "Service", Width: 16},
		{Title: "Mem", Width: 10},
		{Title: "CPU%", Width: 7},
		{Title: "Uptime", Width: 10},
		{Title: "State", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search port, process, service, address..."
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()

	ci := textinput.New()
	ci.Placeholder = "type yes to confirm"
	ci.CharLimit = 8
	ci.Width = 20
	ci.Prompt = "> "
	ci.PromptStyle = confirmStyle
	ci.Blur()

	vp := viewport.New(0, 0)
	vp.YPosition = 0

	return Model{
		discoverer: d,
		kill:       kill,
		cfg:        cfg,
		table:      t,
		input:      ti,
		confirm:    ci,
		viewport:   vp,
		sortCol:    "port",
		version:    version,
	}
}

// Start runs the dashboard against the real system until the user quits.
func Start(cfg *config.Config, version string) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	var resolver discover.ContainerResolver
	var stopper action.ContainerStopper
	if cli := docker.NewCLIResolver(); cli != nil {
		resolver = cli
		stopper = cli
	}
	engine := discover.NewSystem(resolver)
	killer := action.New(stopper)

	m := NewModel(engine, killer.Terminate, cfg, version)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.refresh(),
		waitTick(),
	)
}

// pollInterval is the dashboard refresh cadence.
var pollInterval = 2 * time.Second
