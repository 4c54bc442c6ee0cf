package workflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// lockStripes bounds the lock set regardless of how many workflows the
// store has ever touched. Ids sharing a stripe serialize against each other,
// which is still correct, just occasionally less parallel.
const lockStripes = 64

// FileStore persists each workflow as one JSON document under a root
// directory. It is the default backend: no daemon, survives restarts, and a
// record can be inspected with cat.
type FileStore struct {
	root  string
	locks [lockStripes]sync.Mutex
}

// NewFileStore creates the root directory if needed and returns a store.
func NewFileStore(root string) (*FileStore, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, errors.New("store root required")
	}
	if err := os.MkdirAll(trimmed, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{root: trimmed}, nil
}

// Root returns the directory backing the store.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Create(ctx context.Context) (*Record, error) {
	rec := NewRecord()
	lock := s.idLock(rec.ID)
	lock.Lock()
	defer lock.Unlock()
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	lock := s.idLock(id)
	lock.Lock()
	defer lock.Unlock()
	return s.read(id)
}

func (s *FileStore) Update(ctx context.Context, id string, mutate func(*Record) error) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := s.idLock(id)
	lock.Lock()
	defer lock.Unlock()
	rec, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.Touch()
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := decodeWorkflowFile(entry.Name())
		if !ok {
			continue
		}
		rec, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrWorkflowNotFound) {
				continue
			}
			return nil, err
		}
		infos = append(infos, Info{ID: rec.ID, Status: rec.Status, UpdatedAt: rec.UpdatedAt})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) idLock(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *FileStore) read(id string) (*Record, error) {
	path, err := s.workflowFile(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("open workflow: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &rec, nil
}

// write lands the record via temp file + rename so a crash mid-write never
// leaves a truncated document behind.
func (s *FileStore) write(rec *Record) error {
	path, err := s.workflowFile(rec.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	tmp, err := os.CreateTemp(s.root, "workflow-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write workflow: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close workflow file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace workflow file: %w", err)
	}
	return nil
}

func (s *FileStore) workflowFile(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrWorkflowNotFound
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(trimmed))
	return filepath.Join(s.root, fmt.Sprintf("workflow_%s.json", encoded)), nil
}

func decodeWorkflowFile(name string) (string, bool) {
	if !strings.HasPrefix(name, "workflow_") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(name, "workflow_"), ".json")
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(data), true
}
