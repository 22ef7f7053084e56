package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synesthesie/augment/internal/models"
)

func TestLedgerWithoutDatabase(t *testing.T) {
	for _, l := range []*LedgerService{nil, NewLedgerService(nil)} {
		assert.False(t, l.Enabled())
		require.NoError(t, l.Record(&models.AugmentRun{}, []models.GeneratedImage{{ImageID: "generated_051"}}))
		runs, err := l.RecentRuns(10)
		require.NoError(t, err)
		assert.Empty(t, runs)
	}
}
