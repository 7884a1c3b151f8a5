// Package exportcmder provides the export command for downloading notes as CSV.
package exportcmder

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinholabs/sitelog/pkg/cliui"
	"github.com/pinholabs/sitelog/pkg/config"
	"github.com/pinholabs/sitelog/pkg/export"
	"github.com/pinholabs/sitelog/pkg/logger"
)

type exportCommander struct {
	projectID string
	output    string

	apiTarget string

	debug  bool
	logger *zap.Logger
}

const exportLongDesc string = `Export stored notes as a CSV file.

Downloads the CSV export from a running sitelog API server. Without
--output, the server-suggested filename is used in the current directory.

Examples:
  sitelog export
  sitelog export -p 1
  sitelog export -p 1 -o project-one.csv`

const exportShortDesc string = "Export notes as CSV"

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: exportShortDesc,
		Long:  exportLongDesc,
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
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.projectID, "project", "p", "", "Export only notes for this project ID")
	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Output file path")
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "Sitelog API server URL")

	return cmd
}

func (c *exportCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	exportURL, err := url.Parse(c.apiTarget)
	if err != nil {
		return fmt.Errorf("invalid API target URL: %w", err)
	}
	exportURL.Path = "/api/export/csv"
	if c.projectID != "" {
		q := exportURL.Query()
		q.Set("project_id", c.projectID)
		exportURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, exportURL.String(), nil)
	if err != nil {
		return fmt.Errorf("creating export request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to sitelog API at %s: %w", c.apiTarget, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		fmt.Printf("  %s No notes found to export.\n", cliui.FailMark)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("export request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	path := c.output
	if path == "" {
		path = suggestedFilename(resp.Header.Get("Content-Disposition"), c.projectID)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Printf("  %s Exported %s %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(path),
		cliui.DimStyle.Render(fmt.Sprintf("(%d bytes)", written)),
	)
	return nil
}

// suggestedFilename extracts the filename from a Content-Disposition header,
// falling back to a locally generated name.
func suggestedFilename(disposition, projectID string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}
	return export.Filename(projectID, time.Now())
}
