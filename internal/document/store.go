// Package document owns the section/link tree and mirrors it write-through
// into a storage.Provider after every successful mutation.
//
// A Store is not safe for concurrent use; the vault controller serialises access.
package document

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/checksum"
	"github.com/starford/linkvault/internal/ident"
	"github.com/starford/linkvault/internal/models"
	"github.com/starford/linkvault/internal/storage"
)

// DefaultKey is the storage key the document is persisted under.
const DefaultKey = "vlt_data"

// Store holds the in-memory Document and its persistence binding.
type Store struct {
	provider storage.Provider
	key      string
	newID    ident.Generator
	logger   *slog.Logger

	doc     models.Document
	lastSum string
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDGenerator replaces the random id source.
func WithIDGenerator(g ident.Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.newID = g
		}
	}
}

// WithLogger sets the logger used for load and persist diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Store with an empty document. Call Load before use.
func New(p storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: p,
		key:      DefaultKey,
		newID:    ident.New,
		logger:   slog.Default(),
		doc:      models.Document{Groups: []models.Section{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of the document.
func (s *Store) Key() string { return s.key }

// Load restores the document from storage. Missing or unreadable JSON is
// replaced by the seed document, which is persisted immediately.
func (s *Store) Load(ctx context.Context) error {
	data, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return apperr.Storage("load document", err)
	}
	if ok {
		doc, derr := decodeDocument(data, s.newID)
		if derr == nil {
			s.doc = doc
			s.lastSum = checksum.Sum(data)
			return nil
		}
		s.logger.Warn("stored document is corrupt, reseeding",
			slog.String("key", s.key),
			slog.String("error", derr.Error()))
	}
	s.doc = Seed(s.newID)
	return s.Persist(ctx)
}

// Reload re-reads the stored document after an external change. It reports
// whether the in-memory copy was replaced. Corrupt or missing data keeps the
// current document.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	data, ok, err := s.provider.Get(ctx, s.key)
	if err != nil {
		return false, apperr.Storage("reload document", err)
	}
	if !ok {
		return false, nil
	}
	sum := checksum.Sum(data)
	if sum == s.lastSum {
		return false, nil
	}
	doc, err := decodeDocument(data, s.newID)
	if err != nil {
		s.logger.Warn("ignoring corrupt external document",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return false, nil
	}
	s.doc = doc
	s.lastSum = sum
	return true, nil
}

// Persist serialises the whole document to storage. A failed write leaves the
// in-memory document as it is and returns an ErrStorage.
func (s *Store) Persist(ctx context.Context) error {
	data, err := json.Marshal(&s.doc)
	if err != nil {
		return apperr.Storage("encode document", err)
	}
	if err := s.provider.Set(ctx, s.key, data); err != nil {
		s.logger.Error("persist document failed",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return apperr.Storage("persist document", err)
	}
	s.lastSum = checksum.Sum(data)
	return nil
}

// Checksum returns the SHA-256 of the last bytes read from or written to storage.
func (s *Store) Checksum() string { return s.lastSum }

// Document returns a deep copy of the current document.
func (s *Store) Document() models.Document { return s.doc.Clone() }

// Section returns a copy of the section with the given id.
func (s *Store) Section(id string) (models.Section, bool) {
	sec := s.doc.Section(id)
	if sec == nil {
		return models.Section{}, false
	}
	out := *sec
	out.Links = append([]models.Link(nil), sec.Links...)
	return out, true
}

// Link returns the link with the given id and the id of its owning section.
func (s *Store) Link(id string) (models.Link, string, bool) {
	si, li, ok := s.doc.LocateLink(id)
	if !ok {
		return models.Link{}, "", false
	}
	return s.doc.Groups[si].Links[li], s.doc.Groups[si].ID, true
}

// LinkIDs returns every link id in document order.
func (s *Store) LinkIDs() []string { return s.doc.LinkIDs() }

// Stats returns the number of sections and links.
func (s *Store) Stats() (sections, links int) {
	return len(s.doc.Groups), s.doc.LinkCount()
}
