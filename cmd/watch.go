package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wayseat/wayseat/internal/input"
	"github.com/wayseat/wayseat/internal/wayland"
	"github.com/wayseat/wayseat/internal/wl"
)

var (
	watchInterval time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Poll seats and show live control state",
		Long: `Polls every discovered seat once per interval and renders the controls
whose state is non-zero. Without a focused surface most compositors
deliver no input events, so this is mainly useful for debugging a
nested or headless compositor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			display, err := wl.Connect("")
			if err != nil {
				return fmt.Errorf("failed to connect to compositor: %w", err)
			}
			defer display.Close()

			proxy := wayland.Init(display)
			defer wayland.DeInit(proxy)

			registry := &input.Registry{}
			wayland.PopulateDevices(proxy, 0, registry, nil)

			m := watchModel{registry: registry, interval: watchInterval}
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}

	watchTitleStyle  = lipgloss.NewStyle().Bold(true)
	watchActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	watchDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type watchTickMsg time.Time

type watchModel struct {
	registry *input.Registry
	interval time.Duration
	frame    int
}

func (m watchModel) Init() tea.Cmd {
	return watchTick(m.interval)
}

func watchTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case watchTickMsg:
		for _, dev := range m.registry.Devices() {
			if dev.IsValid() {
				dev.UpdateInput()
			}
		}
		m.registry.PruneInvalid()
		m.frame++
		return m, watchTick(m.interval)
	}
	return m, nil
}

func (m watchModel) View() string {
	out := watchTitleStyle.Render("wayseat watch") +
		watchDimStyle.Render(fmt.Sprintf("  frame %d  (q to quit)", m.frame)) + "\n\n"

	devices := m.registry.Devices()
	if len(devices) == 0 {
		return out + watchDimStyle.Render("no valid seats") + "\n"
	}

	for _, dev := range devices {
		out += watchTitleStyle.Render(dev.Name()) + "\n"
		active := 0
		for _, c := range dev.Controls() {
			if v := c.State(); v != 0 {
				out += watchActiveStyle.Render(fmt.Sprintf("  %-16s %+.3f", c.Name(), v)) + "\n"
				active++
			}
		}
		if active == 0 {
			out += watchDimStyle.Render("  all controls at rest") + "\n"
		}
	}
	return out
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 50*time.Millisecond, "poll interval")
	rootCmd.AddCommand(watchCmd)
}
