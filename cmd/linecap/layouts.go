package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/source"
)

func newLayoutsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the registered layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layouts := core.Layouts()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(layouts)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tPAGES\tFIELDS\tLABEL")
			for _, l := range layouts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Key, formatPages(l.Pages), strings.Join(l.FieldNames(), ","), l.Label)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print full layout definitions as JSON")
	return cmd
}

func newPagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pages [file.pdf]",
		Short: "Print the page count of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := source.PageCount(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// formatPages renders a page list compactly: [7 8 9 12] becomes "7-9,12".
func formatPages(pages []int) string {
	if len(pages) == 0 {
		return "all"
	}
	var parts []string
	for i := 0; i < len(pages); {
		j := i
		for j+1 < len(pages) && pages[j+1] == pages[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, fmt.Sprintf("%d-%d", pages[i], pages[j]))
		} else {
			parts = append(parts, fmt.Sprint(pages[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
