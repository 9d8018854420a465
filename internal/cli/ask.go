package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cherwin23/HR-Assistant/pkg/assistant"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question from the command line",
	Long: `Ask a single question without starting the HTTP server.
Prints the response envelope as JSON.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSessionID, "session", "", "session id for conversation continuity")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		log.Close()
		return err
	}
	defer a.close()

	resp, err := a.assistant.Ask(context.Background(), assistant.Request{
		Question:  strings.Join(args, " "),
		SessionID: askSessionID,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
