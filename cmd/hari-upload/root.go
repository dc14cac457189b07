package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/quality-match/hari-client-sub000/internal/config"
	"github.com/quality-match/hari-client-sub000/pkg/client"
	"github.com/quality-match/hari-client-sub000/pkg/uploader"
)

var version = "dev"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// isTTY checks whether an interactive terminal is attached.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

type uploadFlags struct {
	dataset        string
	dir            string
	objectCategory string
	mediaBatch     int
	objectBatch    int
	attributeBatch int
	shards         int
	skipDupCheck   bool
}

func newRootCommand() *cobra.Command {
	flags := &uploadFlags{}

	rootCmd := &cobra.Command{
		Use:   "hari-upload --dataset <id> --dir <path>",
		Short: "Bulk-upload media trees into a HARI dataset",
		Long: fmt.Sprintf(`%s scans a directory for image files, builds media entities
named by their relative path, and uploads them through the HARI bulk
endpoints in size-bounded batches. Files already present in the dataset
(matched by back reference) are skipped.

%s
  hari-upload --dataset ds_123 --dir ./images
  hari-upload --dataset ds_123 --dir ./images --shards 4
  hari-upload --dataset ds_123 --dir ./images --object-category pedestrian

Credentials come from %s / %s, ~/.hari/credentials.yaml, or a
hari-upload config file; run with no credentials to be prompted.`,
			bold("hari-upload"), bold("EXAMPLES:"), "HARI_USERNAME", "HARI_PASSWORD"),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.dataset, "dataset", "D", "", "Target dataset id (required)")
	rootCmd.Flags().StringVarP(&flags.dir, "dir", "d", ".", "Directory to scan for media files")
	rootCmd.Flags().StringVar(&flags.objectCategory, "object-category", "", "Ensure this object-category subset exists")
	rootCmd.Flags().IntVar(&flags.mediaBatch, "media-batch", uploader.MediaBulkLimit, "Media batch size")
	rootCmd.Flags().IntVar(&flags.objectBatch, "object-batch", uploader.MediaObjectBulkLimit, "Media-object batch size")
	rootCmd.Flags().IntVar(&flags.attributeBatch, "attribute-batch", uploader.AttributeBulkLimit, "Attribute batch size")
	rootCmd.Flags().IntVar(&flags.shards, "shards", 1, "Number of parallel upload shards")
	rootCmd.Flags().BoolVar(&flags.skipDupCheck, "skip-duplicate-check", false, "Skip the pre-upload duplicate listing")
	_ = rootCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(newVersionCommand())

	viper.SetConfigName("hari-upload")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.hari")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("HARI")
	viper.AutomaticEnv()

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hari-upload %s\n", version)
		},
	}
}

// loadClientConfig resolves credentials from the config chain and falls back
// to an interactive prompt when a TTY is attached.
func loadClientConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if raw := viper.GetString("api_base_url"); raw != "" {
		cfg.BaseURL = strings.TrimRight(raw, "/")
	}
	if raw := viper.GetString("auth_url"); raw != "" {
		cfg.AuthURL = raw
	}
	if raw := viper.GetString("username"); raw != "" {
		cfg.Username = raw
	}
	if raw := viper.GetString("password"); raw != "" {
		cfg.Password = raw
	}

	if cfg.Username != "" && cfg.Password == "" && isTTY() {
		fmt.Printf("Password for %s: ", cyan(cfg.Username))
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return config.Config{}, fmt.Errorf("read password: %w", err)
		}
		cfg.Password = string(secret)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newClient(cfg config.Config) (*client.Client, error) {
	return client.New(client.Config{
		BaseURL:  cfg.BaseURL,
		AuthURL:  cfg.AuthURL,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
}
