// Command linecap extracts keyed line records from capacity report tables.
//
//	linecap extract --layout tepco-trunk --pages 7-9 --out lines.json report.pdf
//	linecap layouts
//	linecap pages report.pdf
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/linecap/internal/core"
	_ "github.com/JonMunkholm/linecap/internal/core/layouts" // Register built-in layouts
)

func main() {
	// Unlike the server, the CLI lets the shell environment win over .env.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linecap:", core.FormatUserError(err))
		if !core.IsUserFacing(err) || errors.Is(err, core.ErrExtraction) {
			fmt.Fprintln(os.Stderr, "  cause:", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "linecap",
		Short:         "Extract keyed line records from capacity report tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newLayoutsCommand())
	cmd.AddCommand(newPagesCommand())
	return cmd
}

// envOr returns the environment value for key, or def when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
