package services

import "context"

// AssetStorage manages the video files referenced by Video.FilePath.
// An asset is first staged under a key private to the caller and only
// moved to its final key by Commit, so a failed ingestion never touches
// a file another ingestion already committed.
type AssetStorage interface {
	// Stage copies srcPath into storage and returns the staged key and the final key of name
	Stage(ctx context.Context, srcPath, name string) (staged, key string, err error)
	// Commit moves a staged asset to its final key, replacing a previous file
	Commit(ctx context.Context, staged, key string) error
	Remove(ctx context.Context, key string) error
	Exists(key string) bool
}
