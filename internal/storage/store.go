package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

var ErrRunNotFound = zerr.New("storage: run not found")

const metadataFile = "metadata.json"

// Store keeps one directory per compiled run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create store"), "dir", s.baseDir)
	}
	return nil
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Driver      string    `json:"driver"`
	Timestamp   time.Time `json:"timestamp"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	T           float64   `json:"t,omitempty"`
	N           int       `json:"n,omitempty"`
	Format      string    `json:"format"`
	Statements  int       `json:"statements"`
	Warnings    []string  `json:"warnings,omitempty"`
	Files       []string  `json:"files,omitempty"`
}

// ScriptName is the file name of a run's script.
func (m RunMetadata) ScriptName() string {
	return m.Name + ".mx3"
}

// Dir returns the directory of runID.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// Create allocates a fresh run directory and returns its id.
func (s *Store) Create(name string) (string, error) {
	runID := name + "_" + strings.SplitN(uuid.NewString(), "-", 2)[0]
	if err := os.MkdirAll(s.Dir(runID), 0o755); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create run dir"), "run", runID)
	}
	return runID, nil
}

// Save writes the metadata and script of a run created with Create.
func (s *Store) Save(runID string, meta RunMetadata, script string) error {
	runDir := s.Dir(runID)
	if _, err := os.Stat(runDir); err != nil {
		return zerr.With(zerr.Wrap(ErrRunNotFound, "run dir missing"), "run", runID)
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create metadata"), "run", runID)
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metadata"), "run", runID)
	}

	if err := os.WriteFile(filepath.Join(runDir, meta.ScriptName()), []byte(script), 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write script"), "run", runID)
	}
	return nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read store"), "dir", s.baseDir)
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortStableFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerr.With(zerr.Wrap(ErrRunNotFound, "no metadata"), "run", runID)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read metadata"), "run", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to decode metadata"), "run", runID)
	}
	return &meta, nil
}

func (s *Store) LoadScript(runID string) (string, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), meta.ScriptName()))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read script"), "run", runID)
	}
	return string(data), nil
}
