package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/go-lsp/pkg/lsp"
	"github.com/spf13/cobra"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an LSP file or expression",
	Long: `Evaluate a single LSP expression from a file or inline, and print its
canonical printed result.

Examples:
  # Run a script file
  lsp run script.lsp

  # Evaluate an inline expression
  lsp run -e "(+ 1 2)"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(_ *cobra.Command, args []string) error {
	var opts []lsp.Option
	if len(args) == 1 {
		opts = append(opts, lsp.WithWorkDir(filepath.Dir(args[0])))
	}
	ctx := lsp.New(opts...)

	var (
		result string
		err    error
	)
	switch {
	case evalExpr != "":
		result, err = ctx.Eval(evalExpr)
	case len(args) == 1:
		result, err = ctx.Load(args[0])
	default:
		return fmt.Errorf("either provide a file path or use -e flag for inline code")
	}
	if err != nil {
		return fmt.Errorf("lsp: %w", err)
	}

	fmt.Println(result)

	if verbose {
		h := ctx.Heap()
		fmt.Fprintf(os.Stderr, "heap: %d live, %d free (capacity %d)\n", h.Live(), h.Free(), h.Capacity())
	}

	return nil
}
