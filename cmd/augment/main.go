package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
	"github.com/synesthesie/augment/internal/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagFile        string
	flagSeed        int64
	flagRegionMode  string
	flagCountSource string
	flagProfile     string
	flagDryRun      bool
	flagVerbose     bool
	flagLimit       int
)

var rootCmd = &cobra.Command{
	Use:   "augment",
	Short: "Top up the image collection to its era and region quotas",
	Long: `augment reads the image collection, computes how many records each era
bucket and region is short of its target, generates that many synthetic
records and appends them to the collection.

Run without arguments to augment public/images.json with the compiled-in
quotas. Every flag has an environment counterpart (see .env).`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAugment(cmd, cmd.OutOrStdout())
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs recorded in the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRuns(cmd, cmd.OutOrStdout())
	},
}

func init() {
	addAugmentFlags(rootCmd)
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "number of runs to show")

	rootCmd.AddCommand(runsCmd)
}

func addAugmentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagFile, "file", "", "collection path (COLLECTION_PATH)")
	f.Int64Var(&flagSeed, "seed", 0, "random seed, 0 derives one from the clock (SEED)")
	f.StringVar(&flagRegionMode, "region-mode", "", "uniform | quota (REGION_MODE)")
	f.StringVar(&flagCountSource, "count-source", "", "catalog | collection (COUNT_SOURCE)")
	f.StringVar(&flagProfile, "profile", "", "YAML quota profile (QUOTA_PROFILE)")
	f.BoolVar(&flagDryRun, "dry-run", false, "compute and validate without writing (DRY_RUN)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "augment:", err)
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment, then applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, bool) {
	envLoaded := godotenv.Load() == nil
	cfg := config.New()
	applyFlags(cmd, cfg)
	return cfg, envLoaded
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("file") {
		cfg.CollectionPath = flagFile
		if os.Getenv("BACKUP_PATH") == "" {
			cfg.BackupPath = config.DefaultBackupPath(flagFile)
		}
	}
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
	if f.Changed("region-mode") {
		cfg.RegionMode = flagRegionMode
	}
	if f.Changed("count-source") {
		cfg.CountSource = flagCountSource
	}
	if f.Changed("profile") {
		cfg.QuotaProfile = flagProfile
	}
	if f.Changed("dry-run") {
		cfg.DryRun = flagDryRun
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zc = zap.NewProductionConfig()
	}
	if flagVerbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// loadCatalog returns the compiled-in catalog with the quota profile applied.
func loadCatalog(cfg *config.Config) (*config.Catalog, error) {
	catalog := config.DefaultCatalog()
	if cfg.QuotaProfile != "" {
		profile, err := config.LoadQuotaProfile(cfg.QuotaProfile)
		if err != nil {
			return nil, err
		}
		if err := profile.Apply(catalog); err != nil {
			return nil, err
		}
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func runAugment(cmd *cobra.Command, out io.Writer) error {
	cfg, envLoaded := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if !envLoaded {
		logger.Debug("no .env file found, using environment variables")
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage := services.NewStorageService()
	collections := services.NewCollectionService(storage, logger)
	quotas := services.NewQuotaService(catalog)
	backups := services.NewBackupService(cfg, storage, logger)
	augmenter := services.NewAugmentService(cfg, catalog, collections, quotas, backups, out, logger)

	if cfg.BackupBucket != "" {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init S3 service: %w", err)
		}
		backups.AttachUploader(s3Service)
	}

	if cfg.LockEnabled {
		redisClient := models.InitRedis(cfg, logger)
		defer redisClient.Close()
		augmenter.AttachLocks(services.NewLockService(redisClient, cfg.LockTTL, logger))
	}

	if cfg.LedgerEnabled {
		if ledger := openLedger(cfg, logger); ledger != nil {
			augmenter.AttachLedger(ledger)
		}
	}

	report, err := augmenter.Run(ctx)
	if err != nil {
		logger.Error("augmentation failed", zap.Error(err))
		return err
	}
	logger.Debug("run report", zap.String("run_id", report.RunID.String()), zap.Int64("seed", report.Seed),
		zap.Bool("backup_written", report.BackupWritten), zap.String("backup_key", report.BackupKey))
	return nil
}

// openLedger connects and migrates. The ledger is optional, so failures only
// warn.
func openLedger(cfg *config.Config, logger *zap.Logger) *services.LedgerService {
	db, err := models.InitDB(cfg, logger)
	if err != nil {
		logger.Warn("ledger disabled", zap.Error(err))
		return nil
	}
	if err := models.Migrate(db); err != nil {
		logger.Warn("ledger disabled, migration failed", zap.Error(err))
		return nil
	}
	return services.NewLedgerService(db)
}

func listRuns(cmd *cobra.Command, out io.Writer) error {
	cfg, _ := loadConfig(cmd)
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := models.InitDB(cfg, logger)
	if err != nil {
		return err
	}
	runs, err := services.NewLedgerService(db).RecentRuns(flagLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	writeRuns(out, runs)
	return nil
}

func writeRuns(out io.Writer, runs []*models.AugmentRun) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %-9s  %d + %d = %d  seed=%d  %s\n",
			r.StartedAt.UTC().Format("2006-01-02T15:04:05Z"), r.ID, r.Status,
			r.InputCount, r.GeneratedCount, r.TotalCount, r.Seed, r.CollectionPath)
	}
}
