package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const (
	spirvMagic = 0x07230203
	// magic, version, generator, bound and schema
	spirvHeaderWords = 5
)

// ShaderLoader reads compiled SPIR-V modules into 32-bit words.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	code, err := bytesToBytecode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeShader,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     code,
	}, nil
}

// bytesToBytecode checks the SPIR-V header and converts the little endian stream to words.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "size %d is not a multiple of 4", len(b))
	}
	if len(b) < spirvHeaderWords*4 {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "size %d is shorter than the header", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if byteCode[0] != spirvMagic {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "bad magic number %#08x", byteCode[0])
	}
	return byteCode, nil
}
