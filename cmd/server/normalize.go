package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lyrnios-backend/internal/pkg/aijson"
	"lyrnios-backend/internal/pkg/mermaid"
)

func newNormalizeCmd() *cobra.Command {
	var fromJSON bool

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Print the normalized form of a mermaid diagram",
		Long: `Reads diagram text from the given file, or stdin when no file is given,
and prints what the generate endpoint would return for it.

With --json the input is treated as a raw model reply and its
mermaid_diagram field is normalized.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input failed: %w", err)
				}
				defer f.Close()
				in = f
			}

			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read input failed: %w", err)
			}

			diagram := string(raw)
			if fromJSON {
				object, err := aijson.ParseObject(diagram)
				if err != nil {
					return err
				}
				value, ok := object["mermaid_diagram"].(string)
				if !ok || value == "" {
					fmt.Fprintln(cmd.OutOrStdout(), mermaid.NotAvailableFallback)
					return nil
				}
				diagram = value
			}

			fmt.Fprintln(cmd.OutOrStdout(), mermaid.Normalize(diagram))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromJSON, "json", false, "Input is a model reply containing a mermaid_diagram field")
	return cmd
}
