package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmritz/grocerymail/integrations/postgres"
	"github.com/bmritz/grocerymail/logger"
	"github.com/bmritz/grocerymail/mail"
	"github.com/bmritz/grocerymail/report"
	"github.com/bmritz/grocerymail/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration (same as .grocerymail.yaml)
const defaultConfigYAML = `
statement:
  DAILY_MONITOR:
    year_from_as_of: false
    patterns:
      section_delimiter: ^\*.*\*$
      transactions_title: Transactions
      transaction_delimiter: ^[0-9]{1,2}/[0-9]{1,2}$
  RECENT_ACTIVITY:
    patterns:
      header: Recent transactions as of ([0-9]{2})/([0-9]{2})/([0-9]{2})
      field_separator: \s{2,}
report:
  category: groceries
  keywords: Martin's Supermarket,Fresh Thyme,Wholefds,Down to Earth
  greeting: Good morning!
  message_limit: 30
  schedule: ""
smtp:
  host: localhost
  port: 25
  username: ""
  password: ""
database:
  url: ""
server:
  port: "8080"`

var (
	cfgFile string
	verbose bool
	dbURL   string
	rootCmd = &cobra.Command{
		Use:   "grocerymail [file]",
		Short: "Month to date spending from bank alert emails",
		Long: `grocerymail parses forwarded bank alert emails into transactions,
stores them, and mails a month to date summary for one spending category.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runExtract(cmd, args)
			}
			return cmd.Help()
		},
		SilenceUsage: true,
	}
)

// Execute runs the root command. version is printed by --version.
func Execute(version string) {
	rootCmd.Version = version
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.grocerymail.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env); in-memory when empty")
}

func initLogging() {
	logger.SetVerbose(verbose)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".grocerymail")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GROCERYMAIL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			viper.SetConfigType("yaml")
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// commandContext returns a context carrying the root logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx, logger.New())
}

// errNoDatabase is returned by commands whose writes must outlive the process.
var errNoDatabase = errors.New("this command requires a database: set --db-url, DATABASE_URL or database.url")

// openStore connects to postgres when a database URL is configured. Without
// one it returns an in-memory store, or errNoDatabase when persistent is set.
// The returned func releases the store.
func openStore(ctx context.Context, persistent bool) (store.Store, func(), error) {
	url := coalesce(dbURL, os.Getenv("DATABASE_URL"), viper.GetString("database.url"))
	log := logger.FromContext(ctx)
	if url == "" {
		if persistent {
			return nil, nil, errNoDatabase
		}
		log.Debug().Msg("no database configured, using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("schema creation failed: %w", err)
	}
	log.Debug().Msg("database schema ready")
	return db, db.Close, nil
}

// reportConfig reads the report section of the config.
func reportConfig() report.Config {
	cfg := report.DefaultConfig()
	if v := viper.GetString("report.category"); v != "" {
		cfg.Category = v
	}
	if v := viper.GetString("report.keywords"); v != "" {
		cfg.Keywords = v
	}
	if v := viper.GetString("report.greeting"); v != "" {
		cfg.Greeting = v
	}
	if v := viper.GetInt("report.message_limit"); v > 0 {
		cfg.MessageLimit = v
	}
	return cfg
}

func smtpConfig() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
