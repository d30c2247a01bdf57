package cmd

import (
	"fmt"

	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/report"
	"github.com/spf13/cobra"
)

var reportSend bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print or send the month to date summary",
	Long: `Builds the month to date summary for the configured category from the
stored messages. With --send the summary is mailed to the user_address
setting instead of printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		st, closeStore, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer closeStore()

		cfg := reportConfig()
		svc := report.NewService(st, mail.NewSMTPSender(smtpConfig()), cfg)

		if reportSend {
			summary, err := svc.Send(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent summary: %s across %d transactions\n",
				report.Money(summary.Total), len(summary.Details))
			return nil
		}

		summary, err := svc.Build(ctx)
		if err != nil {
			return err
		}
		subject, body := report.Render(summary, cfg.Category, cfg.Greeting)
		fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n\n%s\n", subject, body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportSend, "send", false, "mail the summary instead of printing it")
}
