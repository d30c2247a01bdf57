package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bmritz/grocerymail/extractor"
	"github.com/bmritz/grocerymail/mail"
	"github.com/spf13/cobra"
)

var (
	extractRaw             bool
	extractSender          string
	extractTransactionOnly bool
	extractMessageOnly     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extracts transactions from an alert",
	Long: `Extracts the transactions of a single alert and prints them as JSON.
The file holds the plaintext body of the alert, or a raw email with --raw.
Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sender, body := extractSender, ""
	if extractRaw {
		in, err := mail.ParseInbound(f)
		if err != nil {
			return err
		}
		sender, body = coalesce(extractSender, in.Sender), in.Text
	} else {
		text, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		body = string(text)
	}

	result := extractor.Process(extractor.NewMessage(sender, body, time.Now()))
	output := extractor.CreateFinalOutput(result, extractTransactionOnly, extractMessageOnly)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func init() {
	rootCmd.AddCommand(extractCmd)
	for _, c := range []*cobra.Command{rootCmd, extractCmd} {
		flags := c.Flags()
		flags.BoolVar(&extractRaw, "raw", false, "treat the file as a raw RFC 5322 email")
		flags.StringVar(&extractSender, "sender", "", "sender address used for the message id")
		flags.BoolVar(&extractTransactionOnly, "transaction-only", false, "print only the transactions")
		flags.BoolVar(&extractMessageOnly, "message-only", false, "print only the message details")
	}
}
