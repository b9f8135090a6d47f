package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wayseat/wayseat/internal/input"
	"github.com/wayseat/wayseat/internal/wayland"
	"github.com/wayseat/wayseat/internal/wl"
)

var (
	listControls bool

	deviceStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	controlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).PaddingLeft(2)

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List advertised seats and their controls",
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

			devices := registry.Devices()
			if len(devices) == 0 {
				fmt.Println("no seats advertised")
				return nil
			}

			for _, dev := range devices {
				fmt.Printf("%s %s\n",
					deviceStyle.Render(dev.Name()),
					sourceStyle.Render("("+dev.Source()+")"))
				controls := dev.Controls()
				fmt.Printf("  %d controls\n", len(controls))
				if listControls {
					names := make([]string, 0, len(controls))
					for _, c := range controls {
						names = append(names, c.Name())
					}
					fmt.Println(controlStyle.Render(strings.Join(names, ", ")))
				}
			}
			return nil
		},
	}
)

func init() {
	listCmd.Flags().BoolVar(&listControls, "controls", false, "print every control name")
	rootCmd.AddCommand(listCmd)
}
