package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cwbudde/go-lsp/pkg/lsp"
	"github.com/spf13/cobra"
)

var loadFile string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the line-oriented LSP REPL",
	Long: `Start an interactive read-eval-print loop: each line is read, evaluated,
and its canonical printed result is shown. Entering (quit) exits cleanly.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&loadFile, "load", "", "load and evaluate a file before starting the prompt")
}

// runRepl implements the line-oriented loop spec.md §6 describes: one
// expression read per line, no partial-input buffering across lines.
func runRepl(_ *cobra.Command, _ []string) error {
	ctx := lsp.New()

	if loadFile != "" {
		if _, err := ctx.Load(loadFile); err != nil {
			return fmt.Errorf("lsp: %w", err)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("LSP> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "(quit)" {
			return nil
		}
		if line == "" {
			continue
		}

		result, err := ctx.Eval(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		fmt.Println(result)
	}
	return scanner.Err()
}
