package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"tikrip/internal/history"
	"tikrip/internal/server"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the extraction HTTP API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	if flagListen != "" {
		cfg.Listen = flagListen
	}

	var logW io.Writer = os.Stdout
	if cfg.LogFile != "" {
		logW = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogBackups,
		}
	}

	scraper := newScraper()

	var srv *server.Server
	if cfg.History {
		path, err := cfg.DatabasePath()
		if err != nil {
			return fmt.Errorf("resolving history path: %w", err)
		}
		store, err := history.Open(path)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		srv = server.New(scraper, store, logW)
	} else {
		srv = server.New(scraper, nil, logW)
	}

	return srv.ListenAndServe(cfg.Listen)
}
