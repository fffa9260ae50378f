package document

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"insadmin/internal/storage"
)

// Cleaner sequences the side effects of a document mutation: the database
// write first, then best-effort deletion of orphaned blobs. A blob whose key
// is no longer referenced by any collection is safe to delete at any time, so
// deletion failures are logged and never surfaced.
type Cleaner struct {
	store storage.Storage
}

func NewCleaner(store storage.Storage) *Cleaner {
	return &Cleaner{store: store}
}

// Apply runs persist; on failure the persistence error is returned verbatim
// and no deletions are attempted. On success the orphaned keys are deleted as
// an unordered batch. Cleanup outcomes never affect the returned entity or
// error: the mutation is already committed.
func Apply[T any](ctx context.Context, c *Cleaner, entityID string, persist func(context.Context) (T, error), keysToDelete []string) (T, error) {
	entity, err := persist(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if len(keysToDelete) > 0 {
		results := c.store.DeleteMany(ctx, keysToDelete)
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				// Logged with the orphaned key so batch reconciliation stays possible.
				logEvent(map[string]any{
					"level":     "warn",
					"event":     "blob_cleanup_failed",
					"entity_id": entityID,
					"key":       res.Key,
					"error":     res.Err.Error(),
				})
			}
		}
		logEvent(map[string]any{
			"level":      "info",
			"event":      "blob_cleanup_done",
			"entity_id":  entityID,
			"total":      len(results),
			"successful": len(results) - failed,
			"failed":     failed,
		})
	}

	return entity, nil
}

func logEvent(fields map[string]any) {
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	fields["component"] = "document"
	b, err := json.Marshal(fields)
	if err != nil {
		log.Printf("failed to marshal log event: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
