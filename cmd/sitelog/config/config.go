// Package configcmder provides the config command for managing persistent
// sitelog configuration stored in the .sitelog/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent sitelog configuration.

Configuration is stored as config.toml in the .sitelog/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  storage.backend, storage.sqlite_path, storage.postgres_dsn,
  api.listen, client.api_target,
  llm.base_url, llm.api_key, llm.model,
  projects.path,
  event_stream.enabled, event_stream.brokers, event_stream.topic

Use subcommands to get, set, or list configuration values:
  sitelog config set <key> <value>    Set a configuration value
  sitelog config get <key>            Get a configuration value
  sitelog config list                 List all configuration values

Examples:
  sitelog config set storage.backend sqlite
  sitelog config set storage.sqlite_path ~/.sitelog/notes.db
  sitelog config get llm.model
  sitelog config list`

const configShortDesc string = "Manage persistent sitelog configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
