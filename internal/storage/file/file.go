// file - реализация storage.Store поверх JSON-файла.
//
// Файл перечитывается на каждой операции, поэтому несколько процессов CLI
// видят изменения друг друга; побеждает последний писатель.
// Запись атомарная: временный файл -> fsync -> rename.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/car-market/internal/storage"
)

const filePerm fs.FileMode = 0o600

// Store - хранилище в одном JSON-объекте {"key": "value"}.
type Store struct {
	mu   sync.Mutex
	path string
}

// DefaultPath - <UserConfigDir>/carctl/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("storage/file/DefaultPath: %w", err)
	}

	return filepath.Join(dir, "carctl", "session.json"), nil
}

// New создаёт хранилище по пути path. Сам файл появится при первой записи.
func New(path string) (*Store, error) {
	const op = "storage/file/New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: mkdir: %w", op, err)
	}

	return &Store{path: path}, nil
}

// Path возвращает путь к файлу хранилища.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return "", err
	}

	v, ok := m[key]
	if !ok {
		return "", storage.ErrNotFound
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}

	m[key] = value
	return s.write(m)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}

	changed := false
	for _, k := range keys {
		if _, ok := m[k]; ok {
			delete(m, k)
			changed = true
		}
	}

	if !changed {
		return nil
	}

	return s.write(m)
}

func (s *Store) Close() error { return nil }

// read читает файл; отсутствующий файл - пустое хранилище.
func (s *Store) read() (map[string]string, error) {
	const op = "storage/file/read"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := map[string]string{}
	if len(data) == 0 {
		return m, nil
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", op, s.path, err)
	}

	return m, nil
}

func (s *Store) write(m map[string]string) error {
	const op = "storage/file/write"

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}

	// Windows не даёт переименовать поверх занятого файла.
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}

	return nil
}
