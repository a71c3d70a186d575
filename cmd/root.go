// Package cmd wires configuration, storage and services into the CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-mess-api/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "student-mess-api",
	Short: "Meal subscription marketplace for students and mess providers",
	Long: `student-mess-api serves the REST API that connects students with meal providers:
subscriptions to meal plans, individual orders with a tracked status lifecycle,
reviews, and provider verification.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db-driver", "", "database driver (sqlite or postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database DSN")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("dsn"))

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, expireCmd, verifyCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runtime holds what every subcommand needs.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func setup(migrate bool) (*runtime, error) {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg.Log.Level, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	db, err := config.InitDB(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := config.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return &runtime{cfg: cfg, log: log, db: db}, nil
}

func (r *runtime) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = r.log.Sync()
}
