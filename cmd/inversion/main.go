package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/soundinglab/inversion-etl/internal/adapter/http"
	kafkaadapter "github.com/soundinglab/inversion-etl/internal/adapter/kafka"
	"github.com/soundinglab/inversion-etl/internal/adapter/sqlitestore"
	"github.com/soundinglab/inversion-etl/internal/adapter/uwyo"
	"github.com/soundinglab/inversion-etl/internal/adapter/xlsx"
	"github.com/soundinglab/inversion-etl/internal/config"
	"github.com/soundinglab/inversion-etl/internal/observability"
	"github.com/soundinglab/inversion-etl/internal/pipeline"
)

type runFlags struct {
	year       int
	startMonth int
	endMonth   int
	station    string
	offline    bool
	outDir     string
	dbPath     string
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "inversion",
		Short: "Detect temperature inversions in upper-air sounding archives",
		Long: `inversion downloads monthly sounding reports for a station, detects
temperature inversion layers in each profile, and writes per-profile and
combined Excel workbooks covering the requested month range.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), flags)
		},
	}

	now := time.Now()
	cmd.Flags().IntVar(&flags.year, "year", now.Year(), "year to analyze")
	cmd.Flags().IntVar(&flags.startMonth, "start-month", 1, "first month of the range (1-12)")
	cmd.Flags().IntVar(&flags.endMonth, "end-month", 12, "last month of the range (1-12)")
	cmd.Flags().StringVar(&flags.station, "station", "", "WMO station number (required)")
	cmd.Flags().BoolVar(&flags.offline, "offline", false, "serve reports from the local cache only")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", ".", "directory for xlsx output")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "sqlite archive path (empty disables archiving)")
	cmd.MarkFlagRequired("station") //nolint:errcheck // flag exists

	return cmd
}

func run(ctx context.Context, flags *runFlags) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := uwyo.NewClient(cfg.FetchBaseURL, cfg.FetchRegion, cfg.FetchTimeout, logger)
	fetcher := uwyo.NewCachedFetcher(client, cfg.CacheDir, flags.offline, logger)

	writer := xlsx.NewWriter(flags.outDir, logger)

	var publisher pipeline.Publisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic)
	}

	var archiver pipeline.Archiver
	if flags.dbPath != "" {
		store, err := sqlitestore.Open(flags.dbPath)
		if err != nil {
			logger.Error("failed to open archive", "path", flags.dbPath, "error", err)
			return err
		}
		defer store.Close()
		archiver = store
		logger.Info("event archive enabled", "path", flags.dbPath)
	}

	p := pipeline.New(fetcher, writer, writer, publisher, archiver, logger, metrics)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	summary, runErr := p.Run(ctx, pipeline.Params{
		Year:       flags.year,
		StartMonth: time.Month(flags.startMonth),
		EndMonth:   time.Month(flags.endMonth),
		Station:    flags.station,
	})
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
	} else {
		fmt.Printf("Processed %d profiles (%d failed, %d months skipped), %d events, %d files\n",
			summary.ProfilesProcessed, summary.ProfilesFailed, summary.MonthsSkipped,
			summary.Events, len(summary.Files))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	return runErr
}
