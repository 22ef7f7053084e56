package services

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
	"github.com/synesthesie/augment/pkg/validation"
	"go.uber.org/zap"
)

// Report summarizes one run.
type Report struct {
	RunID          uuid.UUID
	Seed           int64
	DryRun         bool
	InputCount     int
	GeneratedCount int
	TotalCount     int
	EraDeltas      models.QuotaDeltas
	RegionDeltas   models.QuotaDeltas
	Counts         Counts
	Generated      []GeneratedRecord
	InputDigest    string
	BackupWritten  bool
	BackupKey      string
}

// AugmentService runs load -> deltas -> generate -> merge -> save once.
type AugmentService struct {
	cfg         *config.Config
	catalog     *config.Catalog
	collections *CollectionService
	quotas      *QuotaService
	backups     *BackupService
	ledger      RunLedger
	locks       *LockService
	out         io.Writer
	log         *zap.Logger
	now         func() time.Time
}

func NewAugmentService(cfg *config.Config, catalog *config.Catalog, collections *CollectionService, quotas *QuotaService, backups *BackupService, out io.Writer, log *zap.Logger) *AugmentService {
	return &AugmentService{
		cfg:         cfg,
		catalog:     catalog,
		collections: collections,
		quotas:      quotas,
		backups:     backups,
		out:         out,
		log:         log,
		now:         time.Now,
	}
}

// RunLedger stores run history. LedgerService is the postgres implementation.
type RunLedger interface {
	Record(run *models.AugmentRun, images []models.GeneratedImage) error
}

func (s *AugmentService) AttachLedger(l RunLedger) {
	s.ledger = l
}

func (s *AugmentService) AttachLocks(l *LockService) {
	s.locks = l
}

// ResolveSeed returns seed, or a time-derived one when seed is 0.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Run performs one augmentation. Any error is fatal for the run; the
// collection file is only replaced after every record passed validation.
// Every run, failed ones included, is written to the ledger when one is
// attached.
func (s *AugmentService) Run(ctx context.Context) (_ *Report, err error) {
	seed := ResolveSeed(s.cfg.Seed)
	report := &Report{RunID: uuid.New(), Seed: seed, DryRun: s.cfg.DryRun}
	startedAt := s.now()
	log := s.log.With(zap.String("run_id", report.RunID.String()))
	log.Info("augmentation started", zap.String("path", s.cfg.CollectionPath), zap.Int64("seed", seed),
		zap.String("region_mode", s.cfg.RegionMode), zap.String("count_source", s.cfg.CountSource))
	defer func() {
		if err != nil {
			s.record(log, report, startedAt, models.RunStatusFailed, err)
		}
	}()

	release, err := s.locks.Acquire(ctx, s.cfg.CollectionPath, report.RunID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := s.collections.Load(s.cfg.CollectionPath)
	if err != nil {
		return nil, err
	}
	report.InputCount = snap.Collection.Len()
	report.InputDigest = Digest(snap.Data)

	counts, err := s.quotas.Counts(s.cfg.CountSource, snap.Collection)
	if err != nil {
		return nil, err
	}
	report.Counts = counts
	if counts.Unbucketed > 0 || counts.UnknownRegion > 0 {
		log.Warn("records outside the catalog", zap.Int("unbucketed", counts.Unbucketed), zap.Int("unknown_region", counts.UnknownRegion))
	}

	if report.EraDeltas, err = s.quotas.EraDeltas(counts); err != nil {
		return nil, err
	}
	if report.RegionDeltas, err = s.quotas.RegionDeltas(counts); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "Add per era: %s\n", report.EraDeltas)
	fmt.Fprintf(s.out, "Add per region: %s\n", report.RegionDeltas)

	picker, err := NewRegionPicker(s.cfg.RegionMode, s.catalog, report.RegionDeltas)
	if err != nil {
		return nil, err
	}
	ids := NewIDSequence(s.catalog, snap.Collection)
	log.Debug("id sequence", zap.Int("start", ids.Start()))
	gen := NewGeneratorService(s.catalog, rand.New(rand.NewSource(seed)), ids, picker)

	generated, err := gen.Generate(report.EraDeltas)
	if err != nil {
		return nil, err
	}
	if err := s.validate(snap.Collection, generated); err != nil {
		return nil, err
	}
	report.Generated = generated
	report.GeneratedCount = len(generated)

	merged, err := s.collections.Merge(snap.Collection, generated)
	if err != nil {
		return nil, err
	}
	report.TotalCount = merged.Len()

	if s.cfg.DryRun {
		fmt.Fprintf(s.out, "Dry run: would expand to %d images.\n", report.TotalCount)
		s.record(log, report, startedAt, models.RunStatusDryRun, nil)
		return report, nil
	}

	if report.BackupWritten, err = s.backups.KeepLocalCopy(ctx, snap.Data); err != nil {
		return nil, err
	}
	if report.BackupKey, err = s.backups.UploadSnapshot(ctx, report.RunID, snap.Data, report.InputDigest); err != nil {
		return nil, err
	}

	if err := s.collections.Save(ctx, s.cfg.CollectionPath, merged); err != nil {
		return nil, err
	}

	fmt.Fprintf(s.out, "Expanded to %d images.\n", report.TotalCount)
	s.record(log, report, startedAt, models.RunStatusCompleted, nil)
	log.Info("augmentation finished", zap.Int("input", report.InputCount), zap.Int("generated", report.GeneratedCount),
		zap.Int("total", report.TotalCount))
	return report, nil
}

func (s *AugmentService) validate(existing *models.Collection, generated []GeneratedRecord) error {
	ids := make([]string, len(generated))
	for i, g := range generated {
		bucket, ok := s.catalog.Era(g.Bucket)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEraBucket, g.Bucket)
		}
		if err := validation.ValidateRecord(s.catalog, bucket, g.Record); err != nil {
			return err
		}
		ids[i] = g.Record.ID
	}
	return validation.ValidateNewIDs(existing.IDs(), ids)
}

// record writes the run to the ledger. Ledger trouble never fails a run.
func (s *AugmentService) record(log *zap.Logger, report *Report, startedAt time.Time, status string, runErr error) {
	if s.ledger == nil {
		return
	}
	run := s.BuildRun(report, startedAt, status, runErr)
	images := make([]models.GeneratedImage, 0, len(report.Generated))
	if status == models.RunStatusCompleted {
		for _, g := range report.Generated {
			images = append(images, models.NewGeneratedImage(report.RunID, g.Bucket, g.Record))
		}
	}
	if err := s.ledger.Record(run, images); err != nil {
		log.Warn("failed to record run in ledger", zap.Error(err))
	}
}

// BuildRun converts a report into its ledger row.
func (s *AugmentService) BuildRun(report *Report, startedAt time.Time, status string, runErr error) *models.AugmentRun {
	completedAt := s.now()
	run := &models.AugmentRun{
		ID:             report.RunID,
		CollectionPath: s.cfg.CollectionPath,
		Seed:           report.Seed,
		RegionMode:     s.cfg.RegionMode,
		CountSource:    s.cfg.CountSource,
		InputCount:     report.InputCount,
		GeneratedCount: report.GeneratedCount,
		TotalCount:     report.TotalCount,
		EraDeltas:      deltasJSON(report.EraDeltas),
		RegionDeltas:   deltasJSON(report.RegionDeltas),
		InputDigest:    report.InputDigest,
		BackupKey:      report.BackupKey,
		Status:         status,
		StartedAt:      startedAt,
		CompletedAt:    &completedAt,
	}
	if runErr != nil {
		run.ErrorMessage = runErr.Error()
	}
	return run
}

func deltasJSON(ds models.QuotaDeltas) string {
	b, err := json.Marshal(ds.Map())
	if err != nil {
		return ""
	}
	return string(b)
}
