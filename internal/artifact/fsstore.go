package artifact

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/fsutil"
)

// FSStore persists artifacts under a root directory, one file per key.
// The key namespace maps directly onto subdirectories, so tracking/m1.ttb
// lands at <root>/tracking/m1.ttb. Content types are derived from the key
// extension on read; the store does not keep sidecar metadata.
type FSStore struct {
	fs   fsutil.FileSystem
	root string
}

// NewFSStore opens (creating if needed) a store rooted at dir.
func NewFSStore(fsys fsutil.FileSystem, dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fault.New(fault.BadInput, "empty artifact store root")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fault.Wrap(fault.Internal, err, "create artifact root %s", dir)
	}
	return &FSStore{fs: fsys, root: dir}, nil
}

func (s *FSStore) path(key string) (string, error) {
	if key == "" {
		return "", fault.New(fault.BadInput, "empty artifact key")
	}
	clean := path.Clean(key)
	if strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fault.New(fault.BadInput, "artifact key %q escapes the store root", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// PutObject implements Store.
func (s *FSStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.Cancelled, err, "put %s", key)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fault.Wrap(fault.Internal, err, "put %s", key)
	}
	if err := s.fs.WriteFile(p, data, 0o644); err != nil {
		return fault.Wrap(fault.Internal, err, "put %s", key)
	}
	return nil
}

// GetObject implements Store.
func (s *FSStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fault.Wrap(fault.Cancelled, err, "get %s", key)
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.New(fault.NotFound, "artifact %s", key)
		}
		return nil, fault.Wrap(fault.Internal, err, "get %s", key)
	}
	return data, nil
}

// PutTable implements Store.
func (s *FSStore) PutTable(ctx context.Context, key string, table *Table) error {
	data, err := EncodeTable(table)
	if err != nil {
		return err
	}
	return s.PutObject(ctx, key, data, TableContentType)
}

// GetTable implements Store.
func (s *FSStore) GetTable(ctx context.Context, key string) (*Table, error) {
	data, err := s.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeTable(data)
}

// Stat implements Store.
func (s *FSStore) Stat(ctx context.Context, key string) (ObjectStat, error) {
	if err := ctx.Err(); err != nil {
		return ObjectStat{}, fault.Wrap(fault.Cancelled, err, "stat %s", key)
	}
	p, err := s.path(key)
	if err != nil {
		return ObjectStat{}, err
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ObjectStat{}, fault.New(fault.NotFound, "artifact %s", key)
		}
		return ObjectStat{}, fault.Wrap(fault.Internal, err, "stat %s", key)
	}
	return ObjectStat{Size: info.Size(), ContentType: contentTypeForKey(key)}, nil
}

// Remove implements Store. Removing a missing key reports NotFound.
func (s *FSStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fault.Wrap(fault.Cancelled, err, "remove %s", key)
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if !s.fs.Exists(p) {
		return fault.New(fault.NotFound, "artifact %s", key)
	}
	if err := s.fs.Remove(p); err != nil {
		return fault.Wrap(fault.Internal, err, "remove %s", key)
	}
	return nil
}

func contentTypeForKey(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	case ".ttb":
		return TableContentType
	}
	return "application/octet-stream"
}
