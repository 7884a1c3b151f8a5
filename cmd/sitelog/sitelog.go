// Package sitelogcmder
package sitelogcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/pinholabs/sitelog/cmd/sitelog/ask"
	configcmder "github.com/pinholabs/sitelog/cmd/sitelog/config"
	exportcmder "github.com/pinholabs/sitelog/cmd/sitelog/export"
	notecmder "github.com/pinholabs/sitelog/cmd/sitelog/note"
	servecmder "github.com/pinholabs/sitelog/cmd/sitelog/serve"
	versioncmder "github.com/pinholabs/sitelog/cmd/version"
)

const sitelogLongDesc string = `Sitelog is a duplicate-safe log of categorized construction-project notes
with a natural-language query layer.

Run the API server using:
  sitelog serve        Run the API server

Work with notes using:
  sitelog note         Submit a note
  sitelog ask          Ask questions about stored notes
  sitelog export       Export notes as CSV`

const sitelogShortDesc string = "Sitelog - Project note log"

func NewSitelogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitelog",
		Short: sitelogShortDesc,
		Long:  sitelogLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .sitelog/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(notecmder.NewNoteCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(exportcmder.NewExportCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
