package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type Repository interface {
	List() ([]*domain.Schema, error)
	Get(name string) (*domain.Schema, error)
	GetByPath(path string) (*domain.Schema, error)
	Save(path string, schema *domain.Schema) error
}

// FileRepository keeps one schema per .json, .jsonc, .yaml or .yml file.
type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jsonc", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// List loads every schema file of the base directory. Files that fail to
// parse are skipped; use GetByPath to see the error.
func (r *FileRepository) List() ([]*domain.Schema, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.Schema{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	schemas := make([]*domain.Schema, 0)
	for _, entry := range entries {
		if entry.IsDir() || !isSchemaFile(entry.Name()) {
			continue
		}
		schema, err := r.load(filepath.Join(r.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		schemas = append(schemas, schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas, nil
}

// Get finds a schema by its name or by its file name inside the base
// directory. Names that would escape the directory are rejected.
func (r *FileRepository) Get(name string) (*domain.Schema, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid schema name: %q", name)
	}

	if isSchemaFile(name) {
		path := filepath.Join(r.baseDir, name)
		if _, err := os.Stat(path); err == nil {
			return r.load(path)
		}
	}

	schemas, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, s := range schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("schema not found: %s", name)
}

func (r *FileRepository) GetByPath(path string) (*domain.Schema, error) {
	return r.load(path)
}

// Save writes schema as YAML for .yaml/.yml paths and as indented JSON
// otherwise.
func (r *FileRepository) Save(path string, schema *domain.Schema) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(schema)
	default:
		data, err = json.MarshalIndent(schema, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func (r *FileRepository) load(path string) (*domain.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if schema.Name == "" {
		schema.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return schema, nil
}

// Decode parses a schema document. ext selects YAML for .yaml/.yml; anything
// else is read as JSONC.
func Decode(data []byte, ext string) (*domain.Schema, error) {
	var schema domain.Schema
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, err
		}
	default:
		clean, err := StandardizeJSON(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(clean, &schema); err != nil {
			return nil, err
		}
	}
	return &schema, nil
}

// StandardizeJSON turns a JSONC document (comments, trailing commas) into
// plain JSON. data is left untouched.
func StandardizeJSON(data []byte) ([]byte, error) {
	return hujson.Standardize(bytes.Clone(data))
}
