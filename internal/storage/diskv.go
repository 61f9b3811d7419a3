package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStore is the default local store: one file per key under the
// config directory.
type DiskvStore struct {
	d *diskv.Diskv
}

// NewDiskvStore opens (creating if needed) a diskv store rooted at basePath.
func NewDiskvStore(basePath string) (*DiskvStore, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, err
	}
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 1024 * 1024, // 1MB
	})}, nil
}

func (s *DiskvStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(val), true, nil
}

func (s *DiskvStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.d.Write(key, []byte(value))
}

func (s *DiskvStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.d.Erase(key); err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *DiskvStore) Close() error {
	return nil
}
