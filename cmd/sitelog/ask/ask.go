// Package askcmder provides the ask command for interactive questions
// about stored notes.
package askcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/api"
	"github.com/pinholabs/sitelog/pkg/cliui"
	"github.com/pinholabs/sitelog/pkg/config"
	"github.com/pinholabs/sitelog/pkg/logger"
)

var (
	userPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	answerPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("sitelog> ")
)

type askCommander struct {
	projectID string
	question  string

	apiTarget string

	debug  bool
	logger *zap.Logger
}

const askLongDesc string = `Ask questions about stored notes.

Questions about counts, categories, and lessons learned are answered from
stored data. Anything else is answered by the configured LLM over a sample
of recent notes.

With a question argument, a single answer is printed. Without one, an
interactive session starts.

Examples:
  sitelog ask "how many messages are recorded?"
  sitelog ask "which categories exist?" -p 1
  sitelog ask`

const askShortDesc string = "Ask questions about stored notes"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cmder.question = args[0]
			}

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.projectID, "project", "p", "", "Scope answers to a project ID")
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Sitelog API server URL")

	return cmd
}

func (c *askCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if c.question != "" {
		answer, err := c.askAPI(c.question)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	fmt.Println()
	if c.projectID != "" {
		fmt.Printf("  %s %s\n",
			cliui.KeyStyle.Render("Project:"),
			cliui.ValueStyle.Render(c.projectID),
		)
	}
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		answer, err := c.askAPI(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		fmt.Printf("%s%s\n\n", answerPrompt, answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// askAPI posts one question to the query endpoint and returns the answer text.
func (c *askCommander) askAPI(question string) (string, error) {
	reqBody := api.QueryRequest{
		Question:  question,
		ProjectID: c.projectID,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending query",
		zap.String("api_target", c.apiTarget),
		zap.String("project_id", c.projectID),
	)

	url := c.apiTarget + "/api/query"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// LLM-backed answers can be slow
		Timeout: time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to connect to sitelog API at %s: %w", c.apiTarget, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var queryResp api.QueryResponse
	if err := json.Unmarshal(respBody, &queryResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return queryResp.Answer, nil
}
