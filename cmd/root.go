package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-screener"

	defaultHistoryFile = "resume-screener.db"
)

type Config struct {
	HistoryFile string `mapstructure:"history-file"`
	// Catalog holds extra category -> terms entries merged into the
	// built-in skill catalog.
	Catalog   map[string][]string `mapstructure:"catalog"`
	Weights   *WeightsConfig      `mapstructure:"weights"`
	Judge     *JudgeConfig        `mapstructure:"judge"`
	Screening *ScreeningConfig    `mapstructure:"screening"`
}

type WeightsConfig struct {
	Local float64 `mapstructure:"local"`
	AI    float64 `mapstructure:"ai"`
}

type JudgeConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Provider      string        `mapstructure:"provider"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TruncateChars int           `mapstructure:"truncate-chars"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ScreeningConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	RatePerMinute   int           `mapstructure:"rate-per-minute"`
	CacheTTL        time.Duration `mapstructure:"cache-ttl"`
	CacheMaxEntries int           `mapstructure:"cache-max-entries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener scores candidate resumes against a job description using local matching and an AI judge",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("judge.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// An explicitly named config file must parse; the default one is
	// optional since every setting has a usable default.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// getConfig decodes the merged viper settings. Durations are accepted as
// strings like "45s"; scalar types are coerced leniently so flag, env and
// file sources mix cleanly.
func getConfig() (*Config, error) {
	config := &Config{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, err
	}

	if config.HistoryFile == "" {
		config.HistoryFile = defaultHistoryFile
	}

	return config, nil
}
