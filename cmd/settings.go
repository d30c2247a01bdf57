package cmd

import (
	"fmt"

	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/report"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write stored settings",
	Long: fmt.Sprintf(`Reads and writes settings kept in the store.

Known settings:
  %s      address the summary is mailed to
  %s    address the summary is mailed from
  %s comma separated keywords of the report category`,
		report.SettingUserAddress, report.SettingSenderAddress, report.SettingKeywords),
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		st, closeStore, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer closeStore()

		value, err := st.GetSetting(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]
		if name == report.SettingUserAddress || name == report.SettingSenderAddress {
			if err := mail.ValidateAddress(value); err != nil {
				return err
			}
		}

		ctx := commandContext(cmd)
		st, closeStore, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer closeStore()

		return st.SetSetting(ctx, name, value)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
