package main

import (
	"embed"

	"github.com/releaserr/releaserr/cmd"
)

//go:embed views
var embedViews embed.FS

func main() {
	cmd.Execute(embedViews)
}
