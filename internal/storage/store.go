package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Directories are the category folders uploads may live in.
var Directories = []string{
	"images",
	"documents",
	"misc",
	"practitioners",
	"services",
	"programs",
	"testimonials",
}

type Object struct {
	Key         string    `json:"key"`
	Directory   string    `json:"directory"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	ModTime     time.Time `json:"modifiedAt"`
}

// Store persists uploaded files under "<directory>/<filename>" keys.
type Store interface {
	Save(ctx context.Context, dir, filename string, data []byte, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, dir string) ([]Object, error)
	Stat(ctx context.Context, key string) (Object, error)
}

func IsDirectory(dir string) bool {
	for _, d := range Directories {
		if d == dir {
			return true
		}
	}
	return false
}

// JoinKey builds a key and rejects anything that could escape its directory.
func JoinKey(dir, filename string) (string, error) {
	if !IsDirectory(dir) || !validName(filename) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, dir, filename)
	}
	return dir + "/" + filename, nil
}

// SplitKey is the inverse of JoinKey.
func SplitKey(key string) (dir, filename string, err error) {
	dir, filename, ok := strings.Cut(strings.TrimPrefix(key, "/"), "/")
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	if _, err := JoinKey(dir, filename); err != nil {
		return "", "", err
	}
	return dir, filename, nil
}

// KeyFromURL recovers the key from a URL returned by Save.
func KeyFromURL(u string) (string, bool) {
	u = strings.TrimSpace(u)
	if u == "" {
		return "", false
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	filename := path.Base(u)
	dir := path.Base(path.Dir(u))
	key, err := JoinKey(dir, filename)
	if err != nil {
		return "", false
	}
	return key, true
}

func validName(name string) bool {
	return name != "" &&
		name != "." &&
		name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		path.Base(name) == name
}

// Locate searches every directory for filename and returns the first match.
func Locate(ctx context.Context, s Store, filename string) (Object, error) {
	if !validName(filename) {
		return Object{}, fmt.Errorf("%w: %s", ErrInvalidKey, filename)
	}
	for _, dir := range Directories {
		obj, err := s.Stat(ctx, dir+"/"+filename)
		if err == nil {
			return obj, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Object{}, err
		}
	}
	return Object{}, ErrNotFound
}
