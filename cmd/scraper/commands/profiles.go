package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user/pane-scraper/internal/profiles"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles [name]",
	Short: "Lists the built-in profiles, or prints one as YAML.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			builtin := profiles.Builtin()
			for _, name := range profiles.Names() {
				fmt.Fprintf(out, "%-20s %s\n", name, builtin[name].Description)
			}
			return nil
		}

		p, err := profiles.Resolve(args[0], "")
		if err != nil {
			return err
		}
		data, err := profiles.Marshal(p)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
