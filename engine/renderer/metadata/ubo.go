package metadata

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GlobalUbo mirrors the std140 uniform block bound at set 0, binding 0.
type GlobalUbo struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
	// w is intensity
	AmbientLightColor mgl32.Vec4
	LightPosition     mgl32.Vec3
	_                 float32
	// w is intensity
	LightColor mgl32.Vec4
}

const GlobalUboSize = uint64(unsafe.Sizeof(GlobalUbo{}))

func NewGlobalUbo() GlobalUbo {
	return GlobalUbo{
		Projection:        mgl32.Ident4(),
		View:              mgl32.Ident4(),
		AmbientLightColor: mgl32.Vec4{1, 1, 1, 0.02},
		LightPosition:     mgl32.Vec3{-1, -1, -1},
		LightColor:        mgl32.Vec4{1, 1, 1, 1},
	}
}

// Bytes encodes the block in the little-endian layout the shader reads.
func (u *GlobalUbo) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, GlobalUboSize))
	// binary.Write only fails on unsupported types; GlobalUbo is fixed size.
	_ = binary.Write(buf, binary.LittleEndian, u)
	return buf.Bytes()
}
