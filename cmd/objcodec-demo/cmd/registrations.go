package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oy3o/objcodec/internal/demo"
)

var registrationsCmd = &cobra.Command{
	Use:   "registrations",
	Short: "Print the ids of the standard registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := demo.StandardRegistry(log)
		if err != nil {
			return err
		}
		userOnly, _ := cmd.Flags().GetBool("user")
		regs := reg.Registrations()
		if userOnly {
			regs = reg.UserRegistrations()
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tCODEC")
		for _, r := range regs {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Type, r.Codec.Kind())
		}
		return tw.Flush()
	},
}

func init() {
	registrationsCmd.Flags().BoolP("user", "u", false, "only list user registrations")
	rootCmd.AddCommand(registrationsCmd)
}
