package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/n8l/dungeonmap/pkg/dungeon"
	derrors "github.com/n8l/dungeonmap/pkg/errors"
	dio "github.com/n8l/dungeonmap/pkg/io"
)

// inspectCommand creates the inspect command for summarizing a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		asJSON bool
		route  []int
	)

	cmd := &cobra.Command{
		Use:   "inspect [dungeon.json]",
		Short: "Show rooms, corridors and connectivity of a dungeon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, d, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			stats, err := d.Stats()
			if err != nil && !errors.Is(err, dungeon.ErrNoStarterRoom) {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			printInspect(doc, d, stats)

			if len(route) > 0 {
				if len(route) != 2 {
					return derrors.Invalid("route", "takes two room IDs, got %d", len(route))
				}
				printRoute(d, route[0], route[1])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	cmd.Flags().IntSliceVar(&route, "route", nil, "print the shortest corridor route between two rooms (e.g. --route 1,7)")

	return cmd
}

func printInspect(doc *dio.Document, d *dungeon.Dungeon, s dungeon.Stats) {
	fmt.Println(StyleTitle.Render("Dungeon " + d.ID))
	printKeyValue("seed", strconv.FormatUint(d.Seed, 10))
	printKeyValue("rooms", strconv.Itoa(s.Rooms))
	printKeyValue("corridors", fmt.Sprintf("%d (%d dead ends)", s.Corridors, s.DeadEnds))
	printKeyValue("total", fmt.Sprintf("%d ft", s.TotalFeet))
	printKeyValue("components", strconv.Itoa(s.Components))
	printKeyValue("reachable", fmt.Sprintf("%d of %d", s.Reachable, s.Rooms))
	if s.FarthestRoom != dungeon.NoRoom {
		printKeyValue("farthest", fmt.Sprintf("room %d at %d ft", s.FarthestRoom, s.FarthestFeet))
	}
	if doc.HasLayout() {
		_, bounds := doc.Grid()
		printKeyValue("layout", fmt.Sprintf("%s, %dx%d cells", doc.Fitter, bounds.Width, bounds.Height))
	} else {
		printKeyValue("layout", StyleDim.Render("none"))
	}
	printNewline()
	fmt.Println(roomTable(d, dungeon.NoRoom))
}

func printRoute(d *dungeon.Dungeon, from, to int) {
	ids, feet, ok := d.PathBetween(from, to)
	if !ok {
		printWarning("No route from room %d to room %d", from, to)
		return
	}
	hops := make([]string, len(ids))
	for i, id := range ids {
		hops[i] = strconv.Itoa(id)
	}
	printInfo("Route %s (%d ft)", strings.Join(hops, " "+iconArrow+" "), feet)
}

// roomTable renders the rooms of d with their outgoing corridors. The row for
// room highlight, if any, is emphasized.
func roomTable(d *dungeon.Dungeon, highlight int) string {
	exits := make(map[int][]string)
	for _, c := range d.Corridors {
		target := "—"
		if c.To != dungeon.NoRoom {
			target = strconv.Itoa(c.To)
		}
		exits[c.From] = append(exits[c.From], fmt.Sprintf("%s (%d ft)", target, c.LengthFeet))
	}

	rows := make([][]string, 0, len(d.Rooms))
	for _, r := range d.Rooms {
		rows = append(rows, []string{strconv.Itoa(r.ID), r.Shape.Description(), r.Dimensions, strings.Join(exits[r.ID], ", ")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Shape", "Size", "Exits").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(d.Rooms) && d.Rooms[row].ID == highlight {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return base.Foreground(colorGray)
			}
			return base
		})
	return t.Render()
}
