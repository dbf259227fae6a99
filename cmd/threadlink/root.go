// ABOUTME: Root Cobra command and global flags for the threadlink CLI.
// ABOUTME: Sets up lifecycle hooks for env, config, logging, and store initialization.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2389-research/threadlink/internal/config"
	"github.com/2389-research/threadlink/internal/storage"
)

var globalConfig *config.Config
var globalLog *logrus.Entry
var globalSnapshots storage.SnapshotStore
var globalLikes storage.LikeStore

// Flags
var (
	envFile     string
	dataDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "threadlink",
	Short: "Reference resolution and annotation for image-board threads",
	Long: `
████████╗██╗  ██╗██████╗ ███████╗ █████╗ ██████╗ ██╗     ██╗███╗   ██╗██╗  ██╗
╚══██╔══╝██║  ██║██╔══██╗██╔════╝██╔══██╗██╔══██╗██║     ██║████╗  ██║██║ ██╔╝
   ██║   ███████║██████╔╝█████╗  ███████║██║  ██║██║     ██║██╔██╗ ██║█████╔╝
   ██║   ██╔══██║██╔══██╗██╔══╝  ██╔══██║██║  ██║██║     ██║██║╚██╗██║██╔═██╗
   ██║   ██║  ██║██║  ██║███████╗██║  ██║██████╔╝███████╗██║██║ ╚████║██║  ██╗
   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝

Follow quotes, post numbers, poster IDs, and file names across a
stored thread snapshot. Annotates post text with clickable spans and
keeps local like counts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		if err := loadEnv(envFile); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		level, err := cfg.GetLogLevel()
		if err != nil {
			return fmt.Errorf("failed to resolve log level: %w", err)
		}
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(level)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		globalLog = logrus.NewEntry(logger)

		dataDir := dataDirFlag
		if dataDir == "" {
			dataDir, err = cfg.GetDataDir()
			if err != nil {
				return fmt.Errorf("failed to resolve data dir: %w", err)
			}
		} else if dataDir, err = config.ExpandPath(dataDir); err != nil {
			return fmt.Errorf("failed to expand data dir: %w", err)
		}

		snapshots, err := storage.NewYAMLSnapshotStore(dataDir, globalLog)
		if err != nil {
			return fmt.Errorf("failed to open snapshot store: %w", err)
		}
		globalSnapshots = snapshots

		likes, err := storage.NewYAMLLikeStore(dataDir, globalLog)
		if err != nil {
			return fmt.Errorf("failed to open like store: %w", err)
		}
		globalLikes = likes

		globalLog.WithField("data_dir", dataDir).Debug("stores opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalSnapshots != nil {
			_ = globalSnapshots.Close()
			globalSnapshots = nil
		}
		if globalLikes != nil {
			_ = globalLikes.Close()
			globalLikes = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with THREADLINK_* overrides")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Override the data directory")
}

// loadEnv applies a dotenv file. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
