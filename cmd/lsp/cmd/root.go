package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "lsp",
	Short: "LSP interpreter",
	Long: `lsp is a small Lisp/Scheme-flavored interpreter.

It reads one S-expression at a time from a file, an inline -e expression,
or a line-oriented REPL, evaluates it against a lexically-scoped
environment chain, and prints the canonical form of the result. Values
live on a fixed-capacity heap reclaimed by a mark/sweep collector, so the
process can run arbitrarily many forms without growing without bound.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (report heap live/free slot counts)")
}
