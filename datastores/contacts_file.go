package datastores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// ContactsFile implements [ContactsStore] over a single JSON file holding
// an array of contacts.
//
// Unless Strict is set, a missing, unreadable or corrupt file loads as an
// empty collection and the next Save replaces it.
type ContactsFile struct {
	Path   string
	Strict bool
	Logger *slog.Logger
}

var _ ContactsStore = (*ContactsFile)(nil)

func NewContactsFile(path string, strict bool, logger *slog.Logger) *ContactsFile {
	return &ContactsFile{Path: path, Strict: strict, Logger: logger}
}

func (s *ContactsFile) Load(ctx context.Context) ([]*Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contacts, err := s.read(ctx)
	switch {
	case err == nil:
		return contacts, nil
	case errors.Is(err, fs.ErrNotExist):
		return []*Contact{}, nil
	case s.Strict:
		return nil, err
	default:
		s.logger().LogAttrs(ctx, slog.LevelWarn, "loading empty contacts",
			slog.String("path", s.Path),
			slog.Any("err", err),
		)
		return []*Contact{}, nil
	}
}

// read decodes the file element by element: only a document that is not a
// JSON array is corrupt, elements that are not contact objects are skipped.
func (s *ContactsFile) read(ctx context.Context) ([]*Contact, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("store: read contacts: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []*Contact{}, nil
	}

	var elems []json.RawMessage
	err = json.Unmarshal(b, &elems)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDocument, s.Path, err)
	}

	contacts := make([]*Contact, 0, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			continue
		}
		c := new(Contact)
		err = json.Unmarshal(elem, c)
		if err != nil {
			s.logger().LogAttrs(ctx, slog.LevelWarn, "skipping contact",
				slog.String("path", s.Path),
				slog.Int("index", i),
				slog.Any("err", err),
			)
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

// Save writes the collection to a temporary file next to Path and renames
// it over Path.
func (s *ContactsFile) Save(ctx context.Context, cs []*Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cs == nil {
		cs = []*Contact{}
	}

	b, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode contacts: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.Path)
	err = os.MkdirAll(dir, 0o750)
	if err != nil {
		return fmt.Errorf("store: create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("store: create temporary file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint: errcheck // already renamed on success

	// Keep the mode of the file being replaced; new files stay 0600.
	fi, err := os.Stat(s.Path)
	if err == nil {
		err = f.Chmod(fi.Mode().Perm())
		if err != nil {
			f.Close()
			return fmt.Errorf("store: chmod temporary file: %w", err)
		}
	}

	_, err = f.Write(b)
	if err != nil {
		f.Close()
		return fmt.Errorf("store: write contacts: %w", err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("store: write contacts: %w", err)
	}

	err = os.Rename(f.Name(), s.Path)
	if err != nil {
		return fmt.Errorf("store: replace contacts: %w", err)
	}
	return nil
}

func (s *ContactsFile) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
