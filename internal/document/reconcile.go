package document

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"insadmin/internal/storage"
)

var (
	// ErrNilReader is returned when an incoming file carries no content reader.
	ErrNilReader = errors.New("incoming file reader is nil")
)

// Descriptor is a client-asserted retained record. The transport layer (form
// submission) cannot send back live object identity, only flat field values,
// so the retained set is reconstructed from these.
type Descriptor struct {
	ID            string
	Discriminator string
	// ExistingRef is the record's current key or URL as echoed by the client.
	ExistingRef  string
	OriginalName string
	ByteSize     int64
}

// Deletion marks a record for removal, by id or by reference when the id is
// unknown.
type Deletion struct {
	ID        string
	Reference string
}

// Incoming is a newly uploaded file entering a slot.
type Incoming struct {
	Reader        io.Reader
	Discriminator string
	OriginalName  string
	ContentType   string
	ByteSize      int64
}

// Mutation is the typed update request for one document slot.
type Mutation struct {
	Retained  []Descriptor
	Deletions []Deletion
	Incoming  []Incoming
}

// Result is the reconciliation outcome: the new authoritative collection to
// persist, and the blob keys that become orphans once it is persisted.
// Deleting the keys is the caller's follow-up step, never the engine's.
type Result struct {
	Collection   Collection
	KeysToDelete []string
}

// SingleMutation is the update request for a cardinality-one slot
// (e.g. the policy file or the profile photo).
type SingleMutation struct {
	// Clear empties the slot.
	Clear bool
	// ClearRef optionally carries the client-supplied reference of the
	// removed file; it is forwarded for deletion even if it does not match
	// the current record.
	ClearRef string
	Incoming *Incoming
}

// SingleResult mirrors Result for a slot holding zero or one record.
type SingleResult struct {
	Record       *Record
	KeysToDelete []string
}

// Reconciler computes the state transition of a document slot during an
// update. It uploads new bytes (they must land somewhere to get a key) but
// defers all deletions to the caller.
type Reconciler struct {
	store storage.Storage
	now   func() time.Time
}

func NewReconciler(store storage.Storage) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// Reconcile applies a mutation to a multi-record slot.
//
// Retained descriptors missing an id, discriminator, or existing reference are
// dropped silently: the record simply does not survive the update. Explicit
// deletions win over retention. An incoming file whose discriminator matches a
// retained record replaces the first match in place, keeping its id; otherwise
// it is appended as a new record with no id yet.
//
// Any upload failure aborts the whole mutation; no partial collection is
// returned.
func (r *Reconciler) Reconcile(ctx context.Context, slot Slot, current Collection, m Mutation) (*Result, error) {
	delKeys := newKeySet()
	delIDs := make(map[string]bool)
	for _, d := range m.Deletions {
		if d.ID != "" {
			delIDs[d.ID] = true
		}
		key := KeyFromReference(d.Reference)
		if key == "" && d.ID != "" {
			if i := current.FindByID(d.ID); i >= 0 {
				key = current[i].StorageKey
			}
		}
		// Forwarded even when no live record references it; deleting a key
		// that may not exist costs nothing.
		delKeys.add(key)
	}

	out := make(Collection, 0, len(m.Retained)+len(m.Incoming))
	for _, desc := range m.Retained {
		key := KeyFromReference(desc.ExistingRef)
		if desc.ID == "" || desc.Discriminator == "" || key == "" {
			continue
		}
		if delIDs[desc.ID] || delKeys.has(key) {
			continue
		}
		rec := Record{
			ID:           desc.ID,
			StorageKey:   key,
			OriginalName: desc.OriginalName,
			ByteSize:     desc.ByteSize,
		}
		setDiscriminator(&rec, slot.Mode, desc.Discriminator)
		if i := current.FindByID(desc.ID); i >= 0 {
			rec.UploadedAt = current[i].UploadedAt
			if rec.OriginalName == "" {
				rec.OriginalName = current[i].OriginalName
			}
		}
		if rec.OriginalName == "" {
			rec.OriginalName = desc.Discriminator
		}
		out = append(out, rec)
	}

	uploads := make([]plannedUpload, 0, len(m.Incoming))
	for _, in := range m.Incoming {
		if in.Reader == nil {
			return nil, ErrNilReader
		}
		disc := in.Discriminator
		if disc == "" {
			disc = defaultDiscriminator(slot.Mode)
		}
		key := r.objectKey(slot.Prefix, in.OriginalName)
		rec := Record{
			StorageKey:   key,
			OriginalName: in.OriginalName,
			ByteSize:     in.ByteSize,
			UploadedAt:   r.now().UTC(),
		}
		setDiscriminator(&rec, slot.Mode, disc)

		// First matching retained record is replaced in place; documented
		// first-match policy for ambiguous discriminators.
		replaced := false
		for i := range out {
			if out[i].discriminator(slot.Mode) == disc {
				delKeys.add(out[i].StorageKey)
				rec.ID = out[i].ID
				out[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, rec)
		}
		uploads = append(uploads, plannedUpload{key: key, file: in})
	}

	if err := r.uploadAll(ctx, uploads); err != nil {
		return nil, err
	}

	return &Result{Collection: out, KeysToDelete: delKeys.ordered}, nil
}

// ReconcileSingle applies a mutation to a zero-or-one record slot. A clear
// empties the slot and queues the previous key; a new file replaces the
// current record, keeping its id when one exists.
func (r *Reconciler) ReconcileSingle(ctx context.Context, slot Slot, current *Record, m SingleMutation) (*SingleResult, error) {
	delKeys := newKeySet()
	rec := current

	if m.Clear {
		delKeys.add(KeyFromReference(m.ClearRef))
		if current != nil {
			delKeys.add(current.StorageKey)
		}
		rec = nil
	}

	if m.Incoming != nil {
		in := *m.Incoming
		if in.Reader == nil {
			return nil, ErrNilReader
		}
		if current != nil {
			delKeys.add(current.StorageKey)
		}
		key := r.objectKey(slot.Prefix, in.OriginalName)
		next := Record{
			StorageKey:   key,
			OriginalName: in.OriginalName,
			ByteSize:     in.ByteSize,
			UploadedAt:   r.now().UTC(),
		}
		disc := in.Discriminator
		if disc == "" {
			disc = defaultDiscriminator(slot.Mode)
		}
		setDiscriminator(&next, slot.Mode, disc)
		if current != nil {
			next.ID = current.ID
		}
		if err := r.uploadAll(ctx, []plannedUpload{{key: key, file: in}}); err != nil {
			return nil, err
		}
		rec = &next
	}

	return &SingleResult{Record: rec, KeysToDelete: delKeys.ordered}, nil
}

type plannedUpload struct {
	key  string
	file Incoming
}

// uploadAll writes every planned file to storage before the mutation is
// finalized. Uploads run concurrently; each produces an independent key, so
// order is irrelevant.
func (r *Reconciler) uploadAll(ctx context.Context, uploads []plannedUpload) error {
	if len(uploads) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, up := range uploads {
		up := up
		g.Go(func() error {
			ct := up.file.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			_, err := r.store.Put(gctx, up.key, up.file.Reader, storage.PutObjectOptions{
				Size:        up.file.ByteSize,
				ContentType: ct,
				Metadata: map[string]string{
					"original-filename": up.file.OriginalName,
				},
			})
			if err != nil {
				return fmt.Errorf("upload to storage: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// objectKey builds a unique storage key: timestamp, random suffix, and a
// sanitized rendition of the original filename.
func (r *Reconciler) objectKey(prefix, originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	if base == "" || base == "." {
		base = "file"
	}
	var b strings.Builder
	for _, c := range base {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	buf := make([]byte, 6)
	rand.Read(buf)
	return fmt.Sprintf("%s/%d_%s_%s%s", prefix, r.now().UnixMilli(), hex.EncodeToString(buf), b.String(), ext)
}

func defaultDiscriminator(mode Mode) string {
	if mode == ByName {
		return "Document"
	}
	return "other"
}

// keySet deduplicates deletion keys while preserving insertion order.
type keySet struct {
	seen    map[string]bool
	ordered []string
}

func newKeySet() *keySet {
	return &keySet{seen: make(map[string]bool)}
}

func (s *keySet) add(key string) {
	if key == "" || s.seen[key] {
		return
	}
	s.seen[key] = true
	s.ordered = append(s.ordered, key)
}

func (s *keySet) has(key string) bool {
	return s.seen[key]
}
