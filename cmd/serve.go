package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bmritz/grocerymail/api"
	"github.com/bmritz/grocerymail/ingest"
	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/report"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	servePort     string
	serveSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server that accepts inbound alert emails and serves
the month to date summary. With --schedule the summary is also mailed on a
cron schedule, e.g. --schedule "0 7 * * *".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log := logger.FromContext(ctx)

		st, closeStore, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer closeStore()

		reports := report.NewService(st, mail.NewSMTPSender(smtpConfig()), reportConfig())

		schedule := coalesce(serveSchedule, viper.GetString("report.schedule"))
		if schedule != "" {
			c := cron.New()
			_, err := c.AddFunc(schedule, func() {
				if _, err := reports.Send(logger.WithContext(context.Background(), log)); err != nil {
					log.Error().Err(err).Msg("scheduled report failed")
				}
			})
			if err != nil {
				return err
			}
			c.Start()
			defer c.Stop()
			log.Info().Str("schedule", schedule).Msg("report scheduled")
		}

		cfg := api.DefaultConfig()
		if port := coalesce(servePort, viper.GetString("server.port")); port != "" {
			cfg.Port = ":" + port
		}

		server := api.New(cfg, ingest.New(st), reports, log)
		return server.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on (default 8080)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron spec for mailing the summary")
}
