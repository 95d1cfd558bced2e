package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"persondir/person"
)

// statesCmd represents the states command
var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List the known states and their cities",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable("CODE", "STATE", "CITIES")
		for _, s := range person.States() {
			t.Row(s.Code, s.Name, strings.Join(s.Cities, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
	},
}

func init() {
	rootCmd.AddCommand(statesCmd)
}
