package loaders

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// BinaryLoader reads a file as-is.
type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeBinary,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}
