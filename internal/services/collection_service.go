package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/synesthesie/augment/internal/models"
	"go.uber.org/zap"
)

const indent = "  "

// Snapshot is the collection as loaded, plus the exact bytes it came from.
type Snapshot struct {
	Path       string
	Data       []byte
	Collection *models.Collection
}

type CollectionService struct {
	storage *StorageService
	log     *zap.Logger
}

func NewCollectionService(storage *StorageService, log *zap.Logger) *CollectionService {
	return &CollectionService{storage: storage, log: log}
}

func (s *CollectionService) Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInputAccess, path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.log.Info("collection loaded", zap.String("path", path), zap.Int("records", c.Len()), zap.Int("bytes", len(data)))
	return &Snapshot{Path: path, Data: data, Collection: c}, nil
}

// Parse decodes a JSON array of objects. Anything else is ErrParse.
func Parse(data []byte) (*models.Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrParse)
	}
	if !utf8.Valid(trimmed) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrParse)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	c := &models.Collection{Entries: make([]models.Entry, 0, len(raws))}
	for i, raw := range raws {
		e, err := models.NewEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d is not an object: %v", ErrParse, i, err)
		}
		c.Entries = append(c.Entries, e)
	}
	return c, nil
}

// Merge returns a new collection holding existing's entries unchanged and in
// order, followed by generated. existing is not modified.
func (s *CollectionService) Merge(existing *models.Collection, generated []GeneratedRecord) (*models.Collection, error) {
	merged := &models.Collection{Entries: make([]models.Entry, 0, existing.Len()+len(generated))}
	if existing != nil {
		merged.Entries = append(merged.Entries, existing.Entries...)
	}
	for _, g := range generated {
		e, err := models.EntryFromRecord(g.Record)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", g.Record.ID, err)
		}
		merged.Entries = append(merged.Entries, e)
	}
	return merged, nil
}

// Encode pretty-prints the collection with two-space indentation. Entries are
// re-indented, never re-escaped, so string contents are written as read.
func Encode(c *models.Collection) ([]byte, error) {
	var array bytes.Buffer
	array.WriteByte('[')
	for i, raw := range c.Raw() {
		if i > 0 {
			array.WriteByte(',')
		}
		array.Write(raw)
	}
	array.WriteByte(']')

	var buf bytes.Buffer
	if err := json.Indent(&buf, array.Bytes(), "", indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Save overwrites path with the encoded collection. The write goes through a
// temp file, so a failure leaves the previous content in place.
func (s *CollectionService) Save(ctx context.Context, path string, c *models.Collection) error {
	data, err := Encode(c)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrOutputAccess, err)
	}
	n, sum, err := s.storage.SaveStream(ctx, path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputAccess, path, err)
	}
	s.log.Info("collection written", zap.String("path", path), zap.Int("records", c.Len()),
		zap.Int64("bytes", n), zap.String("blake2b", sum))
	return nil
}
