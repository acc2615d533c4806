package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// Repository resolves the named databases dbfill can fill.
type Repository interface {
	List() ([]*domain.TargetConfig, error)
	Get(ref string) (*domain.TargetConfig, error)
	GetByPath(path string) (*domain.TargetConfig, error)
}

// FileRepository keeps one target per file in dir (YAML, JSON or JSONC).
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// List returns the readable targets ordered by ID. Files that fail to load
// are left out; GetByPath reports why.
func (r *FileRepository) List() ([]*domain.TargetConfig, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []*domain.TargetConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read targets dir: %w", err)
	}

	list := []*domain.TargetConfig{}
	for _, entry := range entries {
		if entry.IsDir() || !isTargetFile(entry.Name()) {
			continue
		}
		t, err := Load(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			continue
		}
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Get resolves ref as a target ID, falling back to a target name.
func (r *FileRepository) Get(ref string) (*domain.TargetConfig, error) {
	list, err := r.List()
	if err != nil {
		return nil, err
	}
	var byName *domain.TargetConfig
	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
		if byName == nil && t.Name == ref {
			byName = t
		}
	}
	if byName != nil {
		return byName, nil
	}
	return nil, fmt.Errorf("target not found: %s (looked in %s)", ref, r.dir)
}

func (r *FileRepository) GetByPath(path string) (*domain.TargetConfig, error) {
	return Load(path)
}

func isTargetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json", ".jsonc":
		return true
	}
	return false
}

// Load reads one target file. ${VAR} references in the DSN are expanded from
// the environment, so passwords can stay in .env. A missing kind is inferred
// from the DSN.
func Load(path string) (*domain.TargetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t domain.TargetConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if data, err = hujson.Standardize(data); err == nil {
			err = json.Unmarshal(data, &t)
		}
	default:
		err = yaml.Unmarshal(data, &t)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if t.ID == "" {
		t.ID = stem
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	t.DSN = strings.TrimSpace(os.ExpandEnv(t.DSN))
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	if t.Kind == "" {
		t.Kind = InferKind(t.DSN)
	}
	return &t, nil
}
