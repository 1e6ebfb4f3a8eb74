package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/sentinel/pkg/sentinel"
)

func newInterfacesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "interfaces",
		Aliases: []string{"ifaces", "list"},
		Short:   "List network interfaces",
		Long: `List every network interface the OS reports, with its addresses and
flags. The interface automatic selection would capture on is marked with *.

Examples:
  sentinel interfaces              # table output
  sentinel interfaces -o json      # machine-readable listing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			return runInterfaces(cmd.Context(), cli, cmd.OutOrStdout(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table|json|yaml|text")
	return cmd
}

func runInterfaces(ctx context.Context, client ClientInterface, w io.Writer, format string) error {
	ifaces, err := client.ListInterfaces(ctx)
	if err != nil {
		return err
	}

	selected, err := client.SelectInterface(ifaces)
	hasSelection := err == nil
	if err != nil && !errors.Is(err, sentinel.ErrNoUsableInterface) {
		return err
	}

	views := make([]interfaceView, 0, len(ifaces))
	for _, iface := range ifaces {
		views = append(views, interfaceView{
			Interface: iface,
			Selected:  hasSelection && iface.Name == selected.Name,
		})
	}
	return writeInterfaces(w, format, views)
}
