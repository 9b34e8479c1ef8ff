package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"journal-backend/internal/domain"
)

// LocalStore keeps documents on the local filesystem. Download links point back at
// the server's document handler.
type LocalStore struct {
	baseURL string
	rootDir string
}

func NewLocalStore(baseURL, rootDir string) (*LocalStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{baseURL: strings.TrimRight(baseURL, "/"), rootDir: rootDir}, nil
}

// path resolves key inside rootDir and rejects keys that escape it.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty storage key")
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(clean)), nil
}

func (s *LocalStore) Save(_ context.Context, key string, r io.Reader) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) Exists(_ context.Context, key string) (bool, int64, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DownloadURL carries an opaque tag so links differ per key without exposing the layout.
func (s *LocalStore) DownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("%s/api/v1/documents/%s?key=%s", s.baseURL, DocumentTag(key), url.QueryEscape(key)), nil
}

// DocumentTag is the opaque path segment of a local download link.
func DocumentTag(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
