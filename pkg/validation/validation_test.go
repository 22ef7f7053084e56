package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/synesthesie/augment/internal/config"
	"github.com/synesthesie/augment/internal/models"
)

func validRecord(c *config.Catalog) models.ImageRecord {
	return models.ImageRecord{
		ID:       "generated_051",
		URL:      c.URLs[0],
		Position: [3]float64{-20, 10, 19.99},
		Era:      -50000,
		Region:   "Oceania",
		Colors:   []string{"ochre", "red"},
		Type:     "geoglyph",
	}
}

func TestValidateRecord(t *testing.T) {
	c := config.DefaultCatalog()
	era1, _ := c.Era("era1")
	assert.NoError(t, ValidateRecord(c, era1, validRecord(c)))

	cases := map[string]func(r *models.ImageRecord){
		"empty id":        func(r *models.ImageRecord) { r.ID = " " },
		"foreign url":     func(r *models.ImageRecord) { r.URL = "https://example.org/x.jpg" },
		"era out of span": func(r *models.ImageRecord) { r.Era = -9999 },
		"unknown region":  func(r *models.ImageRecord) { r.Region = "Antarctica" },
		"unknown type":    func(r *models.ImageRecord) { r.Type = "photo" },
		"no colors":       func(r *models.ImageRecord) { r.Colors = nil },
		"bad position":    func(r *models.ImageRecord) { r.Position[1] = 10.01 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validRecord(c)
			mutate(&r)
			assert.ErrorIs(t, ValidateRecord(c, era1, r), ErrInvalidRecord)
		})
	}
}

func TestValidateColors(t *testing.T) {
	c := config.DefaultCatalog()
	assert.NoError(t, ValidateColors(c, []string{"red"}))
	assert.NoError(t, ValidateColors(c, []string{"red", "blue", "gold", "sand"}))
	assert.ErrorIs(t, ValidateColors(c, []string{"red", "blue", "gold", "sand", "grey"}), ErrInvalidRecord)
	assert.ErrorIs(t, ValidateColors(c, []string{"red", "red"}), ErrInvalidRecord)
	assert.ErrorIs(t, ValidateColors(c, []string{"magenta"}), ErrInvalidRecord)
}

func TestValidatePositionBounds(t *testing.T) {
	c := config.DefaultCatalog()
	assert.NoError(t, ValidatePosition(c, [3]float64{20, -10, -20}))
	assert.ErrorIs(t, ValidatePosition(c, [3]float64{20.01, 0, 0}), ErrInvalidRecord)
	assert.ErrorIs(t, ValidatePosition(c, [3]float64{0, 0, -20.5}), ErrInvalidRecord)
}

func TestValidateNewIDs(t *testing.T) {
	existing := map[string]struct{}{"img_001": {}, "generated_051": {}}
	assert.NoError(t, ValidateNewIDs(existing, []string{"generated_052", "generated_053"}))
	assert.NoError(t, ValidateNewIDs(nil, nil))
	assert.ErrorIs(t, ValidateNewIDs(existing, []string{"generated_051"}), ErrInvalidRecord)
	assert.ErrorIs(t, ValidateNewIDs(existing, []string{"x", "x"}), ErrInvalidRecord)
	assert.ErrorIs(t, ValidateNewIDs(existing, []string{""}), ErrInvalidRecord)
}
