package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertextoedge/httpfetch/internal/adapter/filesystem"
	"github.com/vertextoedge/httpfetch/internal/adapter/httpclient"
	"github.com/vertextoedge/httpfetch/internal/adapter/sqlite"
	"github.com/vertextoedge/httpfetch/internal/config"
	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/logger"
	"github.com/vertextoedge/httpfetch/internal/port"
	"github.com/vertextoedge/httpfetch/internal/service/transfer"
	"github.com/vertextoedge/httpfetch/internal/ui"
)

const version = "0.1.0"

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "httpfetch",
		Short:         "Reliable single-file HTTP downloader",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			log, err = logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newGetCmd() *cobra.Command {
	var (
		retries  int
		chunkMB  int
		bufferKB int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "get <url> <dest>",
		Short: "Download a file to a local path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, dest := args[0], args[1]

			// Flags override the config file.
			if cmd.Flags().Changed("retries") {
				cfg.Download.MaxAttempts = retries
			}
			if cmd.Flags().Changed("chunk-size") {
				cfg.Download.ChunkSizeMB = chunkMB
			}
			if cmd.Flags().Changed("buffer-size") {
				cfg.Download.BufferSizeKB = bufferKB
			}

			transferCfg := &transfer.Config{
				BufferSize:  cfg.Download.GetBufferSize(),
				ChunkSize:   cfg.Download.GetChunkSize(),
				MaxAttempts: cfg.Download.MaxAttempts,
				Backoff: transfer.ExponentialBackoff(
					cfg.Download.GetRetryBackoff(),
					cfg.Download.GetRetryMaxBackoff(),
				),
				ProgressLogInterval: cfg.Download.GetProgressLogInterval(),
			}

			httpOpts := httpclient.DefaultOptions()
			httpOpts.Timeout = cfg.HTTP.GetRequestTimeout()
			httpOpts.UserAgent = cfg.HTTP.UserAgent

			svc := transfer.New(transferCfg, httpclient.New(httpOpts), filesystem.NewManager(), log)

			var history port.HistoryRepository
			if cfg.History.Enabled {
				store, err := sqlite.Open(cfg.History.Path)
				if err != nil {
					return fmt.Errorf("opening history store: %w", err)
				}
				defer store.Close()
				history = store
			}

			// SIGINT/SIGTERM cancel the transfer cooperatively; the
			// engine stops at the next buffer boundary.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sink port.ProgressSink
			var bar *ui.ProgressBar
			if !quiet {
				bar = ui.NewProgressBar("downloading")
				sink = bar.Sink()
			}

			started := time.Now()
			res := svc.Download(ctx, url, dest, sink)
			if bar != nil && res.Outcome == domain.OutcomeSuccess {
				bar.Finish()
				fmt.Fprintln(os.Stderr)
			}

			if history != nil {
				entry := &domain.HistoryEntry{
					URL:          url,
					DestPath:     dest,
					Outcome:      res.Outcome.String(),
					BytesWritten: res.BytesWritten,
					Attempts:     res.Attempts,
					StartedAt:    started.UTC(),
					FinishedAt:   time.Now().UTC(),
				}
				if res.Err != nil {
					entry.Error = res.Err.Error()
				}
				if err := history.Record(entry); err != nil {
					log.Warn("failed to record download history", zap.Error(err))
				}
			}

			if res.Outcome != domain.OutcomeSuccess {
				if res.Err != nil {
					return fmt.Errorf("download failed (%s): %w", res.Outcome, res.Err)
				}
				return fmt.Errorf("download failed (%s)", res.Outcome)
			}

			fmt.Printf("Downloaded %s (%d bytes, %d attempt(s))\n", dest, res.BytesWritten, res.Attempts)
			return nil
		},
	}

	cmd.Flags().IntVar(&retries, "retries", 0, "maximum download attempts")
	cmd.Flags().IntVar(&chunkMB, "chunk-size", 0, "range chunk size in MB")
	cmd.Flags().IntVar(&bufferKB, "buffer-size", 0, "read buffer size in KB")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "disable the progress bar")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled; set history.enabled and history.path in the config")
			}

			store, err := sqlite.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("opening history store: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return fmt.Errorf("listing history: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No downloads recorded.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %-18s  %10d bytes  %d attempt(s)  %s -> %s\n",
					e.FinishedAt.Local().Format("2006-01-02 15:04:05"),
					e.Outcome,
					e.BytesWritten,
					e.Attempts,
					e.URL,
					e.DestPath,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the httpfetch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("httpfetch " + version)
		},
	}
}
