package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileBackend stores preferences as a flat YAML document
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend creates a backend for the YAML file at path. The file and
// its directory are created on first write.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving preferences path: %w", err)
	}
	return &FileBackend{path: abs}, nil
}

// Path returns the absolute file path
func (b *FileBackend) Path() string { return b.path }

// Get implements Backend
func (b *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set implements Backend
func (b *FileBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return err
	}
	values[key] = value
	return b.write(values)
}

// Close implements Backend
func (b *FileBackend) Close() error { return nil }

// Changes implements Watchable using fsnotify on the containing directory,
// so atomic replacements of the file are seen as well.
func (b *FileBackend) Changes(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating preferences directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != b.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *FileBackend) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	doc := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}
	for k, v := range doc {
		if v == nil {
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values, nil
}

func (b *FileBackend) write(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Untagged plain scalars keep booleans unquoted; read() stringifies them back.
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: values[k]},
		)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing preferences file: %w", err)
	}
	return nil
}
