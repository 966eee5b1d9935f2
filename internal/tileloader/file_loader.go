package tileloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
)

type fileLoader struct {
	folder string
	opts   Options
}

func newFileLoader(folder string, opts Options) *fileLoader {
	return &fileLoader{folder: folder, opts: opts}
}

func (f *fileLoader) Load(_ context.Context, key geokey.CellKey) ([]byte, error) {
	path := filepath.Join(f.folder, filepath.FromSlash(key.Path()))
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, elevationerr.Wrap(elevationerr.TileNotFound, path, err)
		}
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, path, err)
	}
	return maybeGunzip(raw, f.opts.Gzip)
}
