// Package cmd implements the command-line interface for newswatch.
// It provides the root command and subcommands for ingesting and serving
// crypto news articles.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/newswatch/cmd/httpd"
	cmdscheduler "github.com/jonesrussell/newswatch/cmd/scheduler"
	"github.com/jonesrussell/newswatch/cmd/scrape"
	cmdsources "github.com/jonesrussell/newswatch/cmd/sources"
	"github.com/jonesrussell/newswatch/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "newswatch",
		Short: "A crypto news ingestion and semantic search service",
		Long: `newswatch crawls crypto news sources, deduplicates and embeds the
articles into a vector-searchable Postgres store, and serves paginated and
semantic queries over them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so environment variables are available to Viper.
	_ = godotenv.Load()

	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newswatch version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scrape.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
	rootCmd.AddCommand(httpd.Command())
	rootCmd.AddCommand(cmdsources.Command())
}

// initConfig reads in the config file and environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// The config file is optional; defaults and environment variables cover
	// a missing one.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := bindEnvVars(); err != nil {
		return err
	}

	if debug || viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
		viper.Set("logger.development", true)
	}

	return nil
}

// bindEnvVars maps well-known environment variables to config keys.
func bindEnvVars() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.host":     {"POSTGRES_HOST"},
		"database.port":     {"POSTGRES_PORT"},
		"database.user":     {"POSTGRES_USER"},
		"database.password": {"POSTGRES_PASSWORD"},
		"database.dbname":   {"POSTGRES_DB"},
		"openai.api_key":    {"OPENAI_API_KEY"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets production-safe configuration defaults.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "newswatch",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("server", map[string]any{
		"address":       config.DefaultServerAddress,
		"read_timeout":  "15s",
		"write_timeout": "15s",
		"idle_timeout":  "60s",
	})

	viper.SetDefault("database", map[string]any{
		"host":    "localhost",
		"port":    "5432",
		"sslmode": "disable",
	})

	viper.SetDefault("scraper", map[string]any{
		"sources":              []string{"coindesk", "cointelegraph", "decrypt", "theblock", "cryptonews", "bloomberg", "forbes"},
		"page_size":            config.DefaultPageSize,
		"max_concurrent":       config.DefaultMaxConcurrent,
		"window_minutes":       config.DefaultWindowMinutes,
		"strict_window":        false,
		"run_interval_minutes": config.DefaultRunInterval,
		"request_timeout":      "30s",
	})

	viper.SetDefault("openai", map[string]any{
		"embedding_model": config.DefaultEmbeddingModel,
		"chat_model":      config.DefaultChatModel,
	})
}
