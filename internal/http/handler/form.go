package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"insadmin/internal/document"
)

// Multipart form parsing for document slot mutations. The client echoes
// retained records as flat JSON descriptors, marks deletions explicitly, and
// attaches new files with a parallel JSON array of kinds or names.

var (
	errBadForm      = errors.New("malformed form field")
	errTooManyFiles = errors.New("too many files")
	errFileTooLarge = errors.New("file too large")
)

// retainedDoc is the wire shape of a record the client wants to keep.
type retainedDoc struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	ByteSize     int64  `json:"byte_size"`
}

// deletedDoc marks a record for removal, by id and/or reference.
type deletedDoc struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// slotFields names the form fields of one document slot.
type slotFields struct {
	retained string
	deleted  string
	files    string
	// discs is a JSON array of per-file kinds or names, parallel to files.
	discs string
}

// closerList collects opened multipart files so the handler can release them
// after the service call.
type closerList struct {
	closers []io.Closer
}

func (l *closerList) add(c io.Closer) {
	l.closers = append(l.closers, c)
}

func (l *closerList) closeAll() {
	for _, c := range l.closers {
		_ = c.Close()
	}
}

func parseSlotMutation(c *fiber.Ctx, f slotFields, cfg RouterConfig, closers *closerList) (document.Mutation, error) {
	var m document.Mutation

	if raw := c.FormValue(f.retained); raw != "" {
		var items []retainedDoc
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return m, errBadForm
		}
		for _, it := range items {
			disc := it.Kind
			if disc == "" {
				disc = it.Name
			}
			m.Retained = append(m.Retained, document.Descriptor{
				ID:            it.ID,
				Discriminator: disc,
				ExistingRef:   it.URL,
				OriginalName:  it.OriginalName,
				ByteSize:      it.ByteSize,
			})
		}
	}

	if raw := c.FormValue(f.deleted); raw != "" {
		var items []deletedDoc
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return m, errBadForm
		}
		for _, it := range items {
			m.Deletions = append(m.Deletions, document.Deletion{ID: it.ID, Reference: it.URL})
		}
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return m, nil
	}
	files := form.File[f.files]
	if len(files) == 0 {
		return m, nil
	}
	if cfg.MaxFilesPerRequest > 0 && len(files) > cfg.MaxFilesPerRequest {
		return m, errTooManyFiles
	}

	var discs []string
	if raw := c.FormValue(f.discs); raw != "" {
		if err := json.Unmarshal([]byte(raw), &discs); err != nil {
			return m, errBadForm
		}
	}

	for i, fh := range files {
		in, err := openIncoming(fh, cfg, closers)
		if err != nil {
			return m, err
		}
		if i < len(discs) {
			in.Discriminator = discs[i]
		}
		m.Incoming = append(m.Incoming, *in)
	}
	return m, nil
}

// parseSingleMutation reads a cardinality-one slot: an optional replacement
// file and an optional delete flag with the removed file's reference.
func parseSingleMutation(c *fiber.Ctx, fileField, deleteField, deleteRefField string, cfg RouterConfig, closers *closerList) (document.SingleMutation, error) {
	var m document.SingleMutation

	if c.FormValue(deleteField) == "true" {
		m.Clear = true
		m.ClearRef = c.FormValue(deleteRefField)
	}

	fh, err := c.FormFile(fileField)
	if err != nil || fh == nil {
		return m, nil
	}
	in, err := openIncoming(fh, cfg, closers)
	if err != nil {
		return m, err
	}
	m.Incoming = in
	return m, nil
}

func openIncoming(fh *multipart.FileHeader, cfg RouterConfig, closers *closerList) (*document.Incoming, error) {
	if cfg.MaxFileSize > 0 && fh.Size > cfg.MaxFileSize {
		return nil, errFileTooLarge
	}
	r, err := fh.Open()
	if err != nil {
		return nil, errBadForm
	}
	closers.add(r)
	return &document.Incoming{
		Reader:       r,
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		ByteSize:     fh.Size,
	}, nil
}

// formError maps form parsing failures onto the standard error envelope.
func formError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errTooManyFiles):
		return writeError(c, fiber.StatusBadRequest, "TOO_MANY_FILES", "too many files in one request")
	case errors.Is(err, errFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the size limit")
	default:
		return writeError(c, fiber.StatusBadRequest, "BAD_FORM", "malformed multipart form")
	}
}

// rawJSONField returns a form field as raw JSON, or nil when absent.
// Malformed JSON is rejected so broken detail blocks never reach the store.
func rawJSONField(c *fiber.Ctx, name string) (json.RawMessage, error) {
	raw := c.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, errBadForm
	}
	return json.RawMessage(raw), nil
}
