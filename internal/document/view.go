package document

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"insadmin/internal/storage"
)

// RecordView is the externally visible shape of a record: the stored key is
// replaced by a freshly signed, time-limited URL.
type RecordView struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind,omitempty"`
	Name         string    `json:"name,omitempty"`
	DocumentURL  string    `json:"document_url"`
	OriginalName string    `json:"original_name"`
	ByteSize     int64     `json:"byte_size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ViewBuilder signs every key of a collection at read time. Signed URLs are
// never persisted and never cached; every call re-authorizes access.
type ViewBuilder struct {
	store       storage.Storage
	ttl         time.Duration
	signTimeout time.Duration
}

func NewViewBuilder(store storage.Storage, ttl time.Duration) *ViewBuilder {
	return &ViewBuilder{store: store, ttl: ttl, signTimeout: 5 * time.Second}
}

// BuildView transforms a collection into response records, signing all keys
// concurrently. A failed or timed-out signing call degrades that record to its
// raw stored key and is logged; the rest of the view still transforms.
func (b *ViewBuilder) BuildView(ctx context.Context, coll Collection) []RecordView {
	views := make([]RecordView, len(coll))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range coll {
		i, rec := i, rec
		g.Go(func() error {
			views[i] = RecordView{
				ID:           rec.ID,
				Kind:         rec.Kind,
				Name:         rec.Name,
				DocumentURL:  b.sign(gctx, rec.StorageKey),
				OriginalName: rec.OriginalName,
				ByteSize:     rec.ByteSize,
				UploadedAt:   rec.UploadedAt,
			}
			return nil
		})
	}
	_ = g.Wait()
	return views
}

// BuildSingle signs a cardinality-one slot. Returns "" for an empty slot.
func (b *ViewBuilder) BuildSingle(ctx context.Context, rec *Record) string {
	if rec == nil || rec.StorageKey == "" {
		return ""
	}
	return b.sign(ctx, rec.StorageKey)
}

func (b *ViewBuilder) sign(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	sctx, cancel := context.WithTimeout(ctx, b.signTimeout)
	defer cancel()
	u, err := b.store.PresignGet(sctx, key, b.ttl)
	if err != nil {
		logEvent(map[string]any{
			"level": "warn",
			"event": "sign_url_failed",
			"key":   key,
			"error": err.Error(),
		})
		return key
	}
	return u
}
