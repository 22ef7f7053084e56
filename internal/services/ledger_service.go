package services

import (
	"github.com/synesthesie/augment/internal/models"
	"gorm.io/gorm"
)

// LedgerService records runs in postgres. A nil db turns it into a no-op.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) Enabled() bool {
	return s != nil && s.db != nil
}

// Record stores run and its generated images in one transaction.
func (s *LedgerService) Record(run *models.AugmentRun, images []models.GeneratedImage) error {
	if !s.Enabled() {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Create(run).Error; err != nil {
			return err
		}
		if len(images) == 0 {
			return nil
		}
		for i := range images {
			images[i].RunID = run.ID
		}
		return tx.CreateInBatches(images, 100).Error
	})
}

// RecentRuns returns the latest runs, newest first.
func (s *LedgerService) RecentRuns(limit int) ([]*models.AugmentRun, error) {
	if !s.Enabled() {
		return nil, nil
	}
	var runs []*models.AugmentRun
	if err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
