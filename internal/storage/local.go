package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

var _ Store = (*LocalStore)(nil)

// LocalStore writes files below a root directory served at URLPrefix.
type LocalStore struct {
	root      string
	urlPrefix string
	logger    *zap.Logger
}

type LocalOption func(*LocalStore)

func WithLocalLogger(l *zap.Logger) LocalOption {
	return func(s *LocalStore) { s.logger = l }
}

func NewLocalStore(root, urlPrefix string, opts ...LocalOption) (*LocalStore, error) {
	s := &LocalStore{root: root, urlPrefix: urlPrefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range Directories {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", d, err)
		}
	}
	return s, nil
}

func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Save(_ context.Context, dir, filename string, data []byte, contentType string) (Object, error) {
	key, err := JoinKey(dir, filename)
	if err != nil {
		return Object{}, err
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return Object{}, fmt.Errorf("storage: write %s: %w", key, err)
	}
	s.logger.Debug("file stored", zap.String("key", key), zap.Int("size", len(data)))
	return s.Stat(context.Background(), key)
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if _, _, err := SplitKey(key); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (s *LocalStore) List(_ context.Context, dir string) ([]Object, error) {
	if !IsDirectory(dir) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKey, dir)
	}
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}

	objects := make([]Object, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, s.object(dir+"/"+e.Name(), info))
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].ModTime.After(objects[j].ModTime)
	})
	return objects, nil
}

func (s *LocalStore) Stat(_ context.Context, key string) (Object, error) {
	if _, _, err := SplitKey(key); err != nil {
		return Object{}, err
	}
	info, err := os.Stat(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, err
	}
	return s.object(key, info), nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalStore) object(key string, info fs.FileInfo) Object {
	dir, name, _ := SplitKey(key)
	return Object{
		Key:         key,
		Directory:   dir,
		Filename:    name,
		URL:         path.Join(s.urlPrefix, key),
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		ModTime:     info.ModTime(),
	}
}
