package document

import (
	"time"

	"github.com/google/uuid"
)

// Package document implements the document lifecycle shared by customers and
// the three policy types: reconciling a persisted document set against an
// incoming mutation, cleaning up orphaned blobs after the database write, and
// building signed-URL views at read time.

// Record represents one stored file attached to an owning entity.
// StorageKey is immutable once the record is created; a replace produces a new
// record with the same ID and a new key.
type Record struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind,omitempty"`
	Name         string    `json:"name,omitempty"`
	StorageKey   string    `json:"storage_key"`
	OriginalName string    `json:"original_name"`
	ByteSize     int64     `json:"byte_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Collection is the ordered document set of one slot on one owning entity.
// It is the sole source of truth for which blobs are live.
type Collection []Record

// Mode selects which field discriminates records within a slot for
// replace-vs-add decisions.
type Mode int

const (
	// ByKind matches on the fixed category tag (e.g. "pan_card").
	ByKind Mode = iota
	// ByName matches on the free-text document name.
	ByName
)

// Slot describes one document collection field on an owning entity.
type Slot struct {
	// Prefix is the storage key folder for uploads into this slot,
	// e.g. "customers/documents".
	Prefix string
	Mode   Mode
}

func (r Record) discriminator(mode Mode) string {
	if mode == ByName {
		return r.Name
	}
	return r.Kind
}

func setDiscriminator(r *Record, mode Mode, v string) {
	if mode == ByName {
		r.Name = v
		return
	}
	r.Kind = v
}

// Keys returns every storage key referenced by the collection.
func (c Collection) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, rec := range c {
		if rec.StorageKey != "" {
			keys = append(keys, rec.StorageKey)
		}
	}
	return keys
}

// FindByID returns the index of the record with the given id, or -1.
func (c Collection) FindByID(id string) int {
	for i, rec := range c {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// EnsureIDs assigns ids to records added in the current mutation. Called by
// the persistence layer before the collection is written; records that came
// from a prior persisted state keep their ids.
func EnsureIDs(c Collection) {
	for i := range c {
		if c[i].ID == "" {
			c[i].ID = uuid.NewString()
		}
	}
}

// EnsureID is EnsureIDs for a cardinality-one slot.
func EnsureID(r *Record) {
	if r != nil && r.ID == "" {
		r.ID = uuid.NewString()
	}
}
