package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/catalog"
	"github.com/spigell/resume-screener/internal/history"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/profile"
	"github.com/spigell/resume-screener/internal/scoring"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
)

const (
	PromptSaveToHistory = "Save results to history"
	PromptDumpToFile    = "Dump results to file"
	PromptShowGaps      = "Show critical gaps"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var screenPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSaveToHistory, PromptDumpToFile, PromptShowGaps, PromptExit},
}

var screenCmd = &cobra.Command{
	Use:   "screen [resume files]",
	Short: "Score candidate resumes against a job description",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("job", "J", "", "file with the job description (required)")
	screenCmd.Flags().StringP("candidates-dir", "D", "", "directory with resume .txt files, scanned in addition to the arguments")
	screenCmd.Flags().Bool("local-only", false, "skip the AI judge and score with local matching only")
	screenCmd.Flags().BoolP("auto-approve", "y", false, "save results to history without prompting")

	if err := screenCmd.MarkFlagRequired("job"); err != nil {
		log.Fatalf("marking job flag required: %v", err)
	}
}

// screen is the main command for the cli.
func screen(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	jobPath, _ := cmd.Flags().GetString("job")
	job, err := readDocument(jobPath)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	candidates, err := collectCandidates(cmd, args)
	if err != nil {
		logger.Fatal("collecting resumes", zap.Error(err))
	}
	if len(candidates) == 0 {
		logger.Fatal("at least one resume file is required, pass files as arguments or set --candidates-dir")
	}

	logger.Info("screening candidates",
		zap.String("job", job.Name),
		zap.Int("count", len(candidates)),
	)

	extractor := profile.NewExtractor(catalog.New(config.Catalog))

	weights := scoring.DefaultWeights
	if config.Weights != nil {
		weights = scoring.Weights{Local: config.Weights.Local, AI: config.Weights.AI}
	}
	aggregator, err := scoring.NewAggregator(weights)
	if err != nil {
		logger.Fatal("invalid score weights", zap.Error(err))
	}

	judge := prepareJudge(ctx, cmd, config, logger)

	screener := screening.New(extractor, aggregator, judge, logger, screeningConfig(config))

	items := screener.ScreenBatch(ctx, job, candidates)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Result.FinalScore > items[j].Result.FinalScore
	})

	reportItems(items, logger)

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	action := PromptSaveToHistory
	for {
		if !autoApprove {
			var err error
			_, action, err = screenPrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(ctx, action, config, job, items, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if autoApprove {
			return
		}
	}
}

func handleAction(ctx context.Context, action string, config *Config, job screening.Input, items []screening.Item, logger *zap.Logger) error {
	switch action {
	case PromptSaveToHistory:
		return saveToHistory(ctx, config, job, items, logger)
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(items)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptShowGaps:
		reportGaps(items, logger)
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func prepareJudge(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) ai.Judge {
	localOnly, _ := cmd.Flags().GetBool("local-only")
	if localOnly {
		logger.Info("running in local-only mode")
		return nil
	}

	if config.Judge == nil || !config.Judge.Enabled {
		logger.Info("judge is disabled, scoring locally only",
			zap.String("hint", "set judge.enabled to true in the configuration file"),
		)
		return nil
	}

	judge, err := newJudge(ctx, config.Judge, logger)
	if err != nil {
		var confErr *ai.ConfigurationError
		if errors.As(err, &confErr) {
			logger.Warn("judge unavailable, continuing with local scoring only", zap.Error(err))
			return nil
		}
		logger.Fatal("building judge", zap.Error(err))
	}

	return judge
}

func newJudge(ctx context.Context, cfg *JudgeConfig, logger *zap.Logger) (ai.Judge, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported judge provider: %s", cfg.Provider)
	}

	geminiCfg := cfg.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKeyFile := geminiCfg.APIKeyFile
	if apiKeyFile == "" {
		apiKeyFile = viper.GetString("judge.gemini.api-key-file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, &ai.ConfigurationError{
			Reason: err.Error() + " (set judge.gemini.api-key-file or GEMINI_API_KEY)",
		}
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewJudge(generator, logger, gemini.JudgeConfig{
		MaxTextChars: cfg.TruncateChars,
		MaxLogLength: geminiCfg.MaxLogLength,
	}), nil
}

func screeningConfig(config *Config) screening.Config {
	cfg := screening.Config{}
	if config.Screening != nil {
		cfg.Concurrency = config.Screening.Concurrency
		cfg.RatePerMinute = config.Screening.RatePerMinute
		cfg.CacheTTL = config.Screening.CacheTTL
		cfg.CacheMaxEntries = config.Screening.CacheMaxEntries
	}
	if config.Judge != nil && config.Judge.Timeout > 0 {
		cfg.JudgeTimeout = config.Judge.Timeout
	}
	return cfg
}

// collectCandidates merges resume files named as arguments with .txt files
// from the optional candidates directory.
func collectCandidates(cmd *cobra.Command, args []string) ([]screening.Input, error) {
	paths := append([]string(nil), args...)

	dir, _ := cmd.Flags().GetString("candidates-dir")
	if dir != "" {
		found, err := filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			return nil, fmt.Errorf("scan candidates directory: %w", err)
		}
		paths = append(paths, found...)
	}

	seen := make(map[string]bool)
	candidates := make([]screening.Input, 0, len(paths))
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true

		input, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, input)
	}

	return candidates, nil
}

func readDocument(path string) (screening.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return screening.Input{}, err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return screening.Input{}, fmt.Errorf("file %s is empty", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return screening.Input{Name: name, Text: text}, nil
}

func reportItems(items []screening.Item, log *zap.Logger) {
	for rank, item := range items {
		fields := []zap.Field{
			zap.Int("rank", rank+1),
			zap.String(logger.FieldCandidate, item.Candidate),
			zap.Float64("final_score", item.Result.FinalScore),
			zap.Float64("local_score", item.Result.LocalScore),
			zap.String("bucket", string(item.Result.Bucket)),
		}
		if item.Result.Verdict != nil {
			fields = append(fields,
				zap.Float64("ai_score", item.Result.AIScore),
				zap.String("recommendation", string(item.Result.Verdict.Recommendation)),
				zap.String("priority", string(item.Result.Verdict.InterviewPriority)),
			)
		}
		if item.Result.Degraded {
			fields = append(fields, zap.String("degraded", item.Result.DegradedReason))
		}
		log.Info("screening result", fields...)
	}
}

func reportGaps(items []screening.Item, log *zap.Logger) {
	for _, item := range items {
		if item.Result.Verdict == nil {
			log.Info("no judge verdict for candidate", zap.String(logger.FieldCandidate, item.Candidate))
			continue
		}
		log.Info("critical gaps",
			zap.String(logger.FieldCandidate, item.Candidate),
			zap.Strings("gaps", item.Result.Verdict.CriticalGaps),
			zap.Strings("risks", item.Result.Verdict.RiskFactors),
		)
	}
}

func saveToHistory(ctx context.Context, config *Config, job screening.Input, items []screening.Item, log *zap.Logger) error {
	store, err := history.Open(config.HistoryFile)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, item := range items {
		record := history.Record{
			CandidateName:  item.Candidate,
			JobName:        job.Name,
			LocalScore:     item.Result.LocalScore,
			AIScore:        item.Result.AIScore,
			FinalScore:     item.Result.FinalScore,
			Bucket:         string(item.Result.Bucket),
			Degraded:       item.Result.Degraded,
			DegradedReason: item.Result.DegradedReason,
			CreatedAt:      item.Result.CreatedAt,
		}
		if item.Result.Verdict != nil {
			record.Recommendation = string(item.Result.Verdict.Recommendation)
			record.Justification = item.Result.Verdict.Justification
		}
		record.Skills = item.Result.Skills

		if _, err := store.SaveResult(ctx, record); err != nil {
			return fmt.Errorf("save result for %s: %w", item.Candidate, err)
		}
	}

	log.Info("saved results to history",
		zap.Int("count", len(items)),
		zap.String("filename", config.HistoryFile),
	)
	return nil
}

func dumpToTmpFile(items []screening.Item) (string, error) {
	pretty, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}

	file, err := os.CreateTemp("", "screening-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := file.Write(pretty); err != nil {
		return "", err
	}

	return file.Name(), nil
}
