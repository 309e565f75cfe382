package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// LocalService keeps objects as files in a directory.
type LocalService struct {
	dir string
}

func NewLocalService(dir string) (*LocalService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalService{dir: filepath.Clean(dir)}, nil
}

func (s *LocalService) Put(ctx context.Context, name string, body io.Reader, contentType string) (string, error) {
	ref := Reference(name)
	if _, err := NameFromReference(ref); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, name)
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", target, err)
	}
	_, err = io.Copy(f, body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write file %s: %w", target, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close file %s: %w", target, closeErr)
	}
	return ref, nil
}

func (s *LocalService) Open(ctx context.Context, ref string) (*Object, error) {
	name, err := NameFromReference(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Object{Body: f, Size: info.Size(), ContentType: contentType}, nil
}

func (s *LocalService) Delete(ctx context.Context, ref string) error {
	name, err := NameFromReference(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

var _ Service = (*LocalService)(nil)
