// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperwatch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperwatch/internal/secrets"
	"github.com/pdiddy/paperwatch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// getSecret resolves a credential by its environment-variable name.
// Secrets from .secrets/ are promoted into the environment at startup,
// so the environment is the single lookup surface.
func getSecret(key string) string {
	return os.Getenv(key)
}

// rootCmd is the base command for the paperwatch CLI.
var rootCmd = &cobra.Command{
	Use:   "paperwatch",
	Short: "Watch arXiv for papers matching researcher profiles",
	Long: `paperwatch fetches recent arXiv papers, ranks them against per-researcher
keyword profiles, syncs the qualifying ones into per-profile Feishu bitable
tables, and broadcasts a digest to the bot's chats.

Profiles are sync_*.yaml files; each describes one researcher's interest,
exclude, and required keywords plus sync and notification settings. fetch
previews a profile without touching Feishu; sync runs the full pipeline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k, v := range s {
				keys = append(keys, k)
				if os.Getenv(k) == "" {
					os.Setenv(k, v)
				}
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or ~/.paperwatch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".paperwatch"))
		}
	}

	viper.SetDefault("notify.enabled", true)
	viper.SetDefault("ledger.path", filepath.Join("data", "paperwatch.db"))
	viper.SetDefault("profiles_dir", "profiles")

	viper.SetEnvPrefix("PAPERWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// --- config assembly ---

func arxivConfig() types.ArxivConfig {
	return types.ArxivConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("arxiv.timeout"),
			UserAgent: viper.GetString("arxiv.user_agent"),
		},
		RequestDelay:     viper.GetDuration("arxiv.request_delay"),
		MaxRetries:       viper.GetInt("arxiv.max_retries"),
		MaxDaysPerBatch:  viper.GetInt("arxiv.max_days_per_batch"),
		BatchOverlapDays: viper.GetInt("arxiv.batch_overlap_days"),
		MinBatchInterval: viper.GetDuration("arxiv.min_batch_interval"),
	}
}

func feishuConfig() types.FeishuConfig {
	return types.FeishuConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: viper.GetDuration("feishu.timeout"),
		},
		AppID:             getSecret("FEISHU_APP_ID"),
		AppSecret:         getSecret("FEISHU_APP_SECRET"),
		UserAccessToken:   getSecret("FEISHU_USER_ACCESS_TOKEN"),
		TenantAccessToken: getSecret("FEISHU_TENANT_ACCESS_TOKEN"),
		AppToken:          getSecret("FEISHU_BITABLE_APP_TOKEN"),
		BatchSize:         viper.GetInt("feishu.batch_size"),
		MaxRetries:        viper.GetInt("feishu.max_retries"),
		RetryDelay:        viper.GetDuration("feishu.retry_delay"),
	}
}

func notifyConfig() types.NotifyConfig {
	return types.NotifyConfig{
		Enabled:            viper.GetBool("notify.enabled"),
		MinPapersThreshold: viper.GetInt("notify.min_papers_threshold"),
		MaxRecommended:     viper.GetInt("notify.max_recommended"),
		ChatDelay:          viper.GetDuration("notify.chat_delay"),
	}
}

func ledgerPath() string {
	return viper.GetString("ledger.path")
}

func profilesDir() string {
	return viper.GetString("profiles_dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
