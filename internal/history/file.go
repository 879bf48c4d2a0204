package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// FileStore writes one JSON document per game to <dir>/<gameID>.json. Every
// write replaces the file atomically through a temp file and rename, so a
// crash leaves either the old or the new log on disk.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(gameID string) (string, error) {
	if _, err := uuid.Parse(gameID); err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidID, gameID)
	}
	return filepath.Join(f.dir, gameID+".json"), nil
}

func (f *FileStore) Create(meta Meta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.path(meta.GameID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, meta.GameID)
	}
	return f.write(p, &Log{Meta: meta, Entries: []Entry{}})
}

func (f *FileStore) Append(gameID string, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.path(gameID)
	if err != nil {
		return err
	}
	log, err := f.read(p, gameID)
	if err != nil {
		return err
	}
	if err := nextSeqCheck(&log, e); err != nil {
		return err
	}
	log.Entries = append(log.Entries, e)
	return f.write(p, &log)
}

func (f *FileStore) LoadAll(gameID string) (Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.path(gameID)
	if err != nil {
		return Log{}, err
	}
	return f.read(p, gameID)
}

func (f *FileStore) Delete(gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.path(gameID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, gameID)
		}
		return err
	}
	return nil
}

// List returns the metadata of every log in the directory. Files that are
// not valid logs are skipped.
func (f *FileStore) List() ([]Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dirEntries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var out []Meta
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		log, err := f.read(filepath.Join(f.dir, name), id)
		if err != nil {
			continue
		}
		out = append(out, log.Meta)
	}
	sortMetas(out)
	return out, nil
}

func (f *FileStore) read(p, gameID string) (Log, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Log{}, fmt.Errorf("%w: %s", ErrNotFound, gameID)
		}
		return Log{}, err
	}
	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return Log{}, model.Corrupt("history %s: %v", gameID, err)
	}
	if log.GameID != gameID {
		return Log{}, model.Corrupt("history file %s holds game %q", gameID, log.GameID)
	}
	return log, nil
}

func (f *FileStore) write(p string, log *Log) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
