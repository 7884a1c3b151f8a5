package main

import (
	"os"

	sitelogcmder "github.com/pinholabs/sitelog/cmd/sitelog"
)

func main() {
	cmd := sitelogcmder.NewSitelogCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
