// Package notecmder provides the note command for submitting notes to the API.
package notecmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/api"
	"github.com/pinholabs/sitelog/pkg/cliui"
	"github.com/pinholabs/sitelog/pkg/config"
	"github.com/pinholabs/sitelog/pkg/logger"
)

type noteCommander struct {
	projectID     string
	category      string
	occurredAt    string
	lessonLearned bool

	apiTarget string

	debug  bool
	logger *zap.Logger
}

const noteLongDesc string = `Submit a note to a running sitelog API server.

The message is enriched server-side into a short context summary and a key
change description. Re-submitting the same project, category, and message is
rejected as a duplicate.

Examples:
  sitelog note "Concrete pour delayed by rain" -p 1 -c general
  sitelog note "Always stage rebar a day early" -p 2 -c execution --lesson
  sitelog note "Permit approved" -p 1 -c planning --occurred-at 2026-08-14T09:30`

const noteShortDesc string = "Submit a note"

func NewNoteCmd() *cobra.Command {
	cmder := &noteCommander{}

	cmd := &cobra.Command{
		Use:   "note <message>",
		Short: noteShortDesc,
		Long:  noteLongDesc,
		Args:  cobra.ExactArgs(1),
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
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args[0])
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.projectID, "project", "p", "", "Project ID the note belongs to")
	cmd.Flags().StringVarP(&cmder.category, "category", "c", "general", "Note category (general, planning, execution, issue)")
	cmd.Flags().StringVar(&cmder.occurredAt, "occurred-at", "", "When the event occurred (RFC 3339 or 2006-01-02T15:04), defaults to now")
	cmd.Flags().BoolVar(&cmder.lessonLearned, "lesson", false, "Mark the note as a lesson learned")
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Sitelog API server URL")

	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func (c *noteCommander) run(message string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	lessonLearned := "no"
	if c.lessonLearned {
		lessonLearned = "yes"
	}

	occurredAt := c.occurredAt
	if occurredAt == "" {
		occurredAt = time.Now().Format(time.RFC3339)
	}

	reqBody := api.SubmitNoteRequest{
		ProjectID:     c.projectID,
		Category:      c.category,
		OccurredAt:    occurredAt,
		Message:       message,
		LessonLearned: lessonLearned,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("submitting note",
		zap.String("api_target", c.apiTarget),
		zap.String("project_id", c.projectID),
		zap.String("category", c.category),
	)

	url := c.apiTarget + "/api/notes"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		// Server-side enrichment can be slow
		Timeout: time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to connect to sitelog API at %s: %w", c.apiTarget, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		var submitResp api.SubmitNoteResponse
		if err := json.Unmarshal(respBody, &submitResp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		fmt.Printf("  %s %s\n", cliui.SuccessMark, submitResp.Message)
		return nil

	case http.StatusConflict:
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		fmt.Printf("  %s %s\n", cliui.FailMark, errResp.Error)
		return nil

	default:
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("note submission failed (HTTP %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("note submission failed (HTTP %d): %s", resp.StatusCode, string(respBody))
	}
}
