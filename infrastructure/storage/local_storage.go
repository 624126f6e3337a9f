package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

// VideoPrefix is the key prefix of stored video assets
const VideoPrefix = "videos"

const stagingDir = ".staging"

// LocalStorage keeps assets under root on an afero filesystem.
// Sources are read from src, which is usually the same OS filesystem.
type LocalStorage struct {
	src  afero.Fs
	dst  afero.Fs
	root string
}

func NewLocalStorage(src, dst afero.Fs, root string) (*LocalStorage, error) {
	if err := dst.MkdirAll(filepath.Join(root, VideoPrefix, stagingDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{src: src, dst: dst, root: root}, nil
}

var _ services.AssetStorage = (*LocalStorage)(nil)

// Stage copies srcPath to a uniquely named file under <root>/videos/.staging
func (s *LocalStorage) Stage(ctx context.Context, srcPath, name string) (string, string, error) {
	key := path.Join(VideoPrefix, filepath.Base(name))
	staged := path.Join(VideoPrefix, stagingDir, uuid.NewString()+"-"+filepath.Base(name))

	in, err := s.src.Open(srcPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to open source asset: %w", err)
	}
	defer in.Close()

	out, err := s.dst.OpenFile(s.fullPath(staged), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", "", fmt.Errorf("failed to create asset file: %w", err)
	}

	written, err := io.Copy(out, &contextReader{ctx: ctx, r: in})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.dst.Remove(s.fullPath(staged))
		return "", "", fmt.Errorf("failed to copy asset: %w", err)
	}

	logger.Storage("asset_staged", "Video asset staged", map[string]interface{}{
		"key":    key,
		"staged": staged,
		"bytes":  written,
	})

	return staged, key, nil
}

func (s *LocalStorage) Commit(ctx context.Context, staged, key string) error {
	if err := s.dst.Rename(s.fullPath(staged), s.fullPath(key)); err != nil {
		return fmt.Errorf("failed to finalize asset: %w", err)
	}

	logger.Storage("asset_stored", "Video asset stored", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (s *LocalStorage) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.dst.Remove(s.fullPath(key))
	if err != nil && !os.IsNotExist(err) {
		logger.StorageError("asset_remove_failed", "Failed to remove asset", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	logger.Storage("asset_removed", "Video asset removed", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (s *LocalStorage) Exists(key string) bool {
	ok, err := afero.Exists(s.dst, s.fullPath(key))
	return err == nil && ok
}

// Path returns the filesystem location of key
func (s *LocalStorage) Path(key string) string {
	return s.fullPath(key)
}

func (s *LocalStorage) fullPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// contextReader stops a long copy once the context is cancelled
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
