package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBanksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List the banks that can be detected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.cfg.Registry()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BANK\tKEYWORDS")
			for _, e := range reg.Entries() {
				fmt.Fprintf(w, "%s\t%s\n", e.Name, strings.Join(e.Keywords, ", "))
			}
			return w.Flush()
		},
	}
}
