package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/spec"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list [PREFIX]",
		Short: "List installed packages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				prefix = args[0]
			}
			return c.runList(cmd.Context(), prefix)
		},
	}

	return cmd
}

func (c *CLI) runList(ctx context.Context, prefix string) error {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	store, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	set, err := store.Load(ctx)
	if err != nil {
		return err
	}
	rows := listRows(set.All(), prefix)
	if len(rows) == 0 {
		out.info("No packages installed")
		return nil
	}
	fmt.Println(listTable(rows))
	return nil
}

// listRows groups specs by name. specs must be sorted by name with versions
// descending, which keeps the versions column highest first.
func listRows(specs []*spec.Spec, prefix string) [][]string {
	var (
		rows [][]string
		last string
	)
	for _, s := range specs {
		if !strings.HasPrefix(s.Name, prefix) {
			continue
		}
		v := s.Version.String()
		if !s.IsGeneric() {
			v += " " + s.Platform
		}
		if s.Name == last {
			rows[len(rows)-1][1] += ", " + v
			continue
		}
		last = s.Name
		rows = append(rows, []string{s.Name, v, s.Summary})
	}
	return rows
}

func listTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Versions", "Summary").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
