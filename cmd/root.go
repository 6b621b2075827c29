package cmd

import (
	"embed"
	"os"
	"time"

	"github.com/releaserr/releaserr/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var embedViews embed.FS

var rootCmd = &cobra.Command{
	Use:   "releaserr",
	Short: "Streaming release dashboard",
	Long: `Releaserr serves a dashboard of upcoming streaming releases built from
TMDB and OMDB data, with one-click requests forwarded to Jellyseerr.`,
}

// Execute runs the root command. The embedded views are handed down from
// main so the cmd package stays testable.
func Execute(views embed.FS) {
	embedViews = views
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalln(err)
	}
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if viper.GetBool("app_debug") {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debug("[INIT] debug logging enabled")
	}
}
