package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/history"
	"github.com/spigell/resume-screener/internal/logger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent screening results",
	Run: func(cmd *cobra.Command, _ []string) {
		showHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of results to show, 0 for all")
}

func showHistory(cmd *cobra.Command) {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	store, err := history.Open(config.HistoryFile)
	if err != nil {
		zlog.Fatal("opening history", zap.Error(err), zap.String("filename", config.HistoryFile))
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.Results(ctx, limit)
	if err != nil {
		zlog.Fatal("reading history", zap.Error(err))
	}

	if len(records) == 0 {
		zlog.Info("history is empty", zap.String("filename", config.HistoryFile))
		return
	}

	for _, record := range records {
		fields := []zap.Field{
			zap.Int64("id", record.ID),
			zap.String(logger.FieldCandidate, record.CandidateName),
			zap.String("job", record.JobName),
			zap.Float64("final_score", record.FinalScore),
			zap.String("bucket", record.Bucket),
			zap.Time("created_at", record.CreatedAt),
		}
		if record.Recommendation != "" {
			fields = append(fields, zap.String("recommendation", record.Recommendation))
		}
		if record.Degraded {
			fields = append(fields, zap.String("degraded", record.DegradedReason))
		}
		zlog.Info("screening record", fields...)
	}
}
