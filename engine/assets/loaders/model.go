package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// ModelLoader decodes Wavefront OBJ files into indexed meshes.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	// Materials are not used, an empty reader keeps the decoder from looking for the mtllib.
	decoder, err := obj.DecodeReader(f, strings.NewReader(""))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh, err := buildMesh(name, decoder)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", path)
	}

	return &metadata.Resource{
		Type:     metadata.ResourceTypeMesh,
		Name:     name,
		FullPath: path,
		DataSize: uint64(len(mesh.Vertices)) * uint64(metadata.VertexStride),
		Data:     mesh,
	}, nil
}

// A vertex is unique by the combination of its position, normal and uv indices.
type vertexKey struct {
	position, normal, uv int
}

type meshBuilder struct {
	decoder *obj.Decoder
	unique  map[vertexKey]uint32
	mesh    *metadata.MeshData
}

// buildMesh triangulates every face as a fan and removes duplicate vertices.
func buildMesh(name string, decoder *obj.Decoder) (*metadata.MeshData, error) {
	b := &meshBuilder{
		decoder: decoder,
		unique:  make(map[vertexKey]uint32),
		mesh:    &metadata.MeshData{Name: name},
	}

	for _, object := range decoder.Objects {
		for _, face := range object.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				b.addVertex(face, 0)
				b.addVertex(face, i-1)
				b.addVertex(face, i)
			}
		}
	}

	if len(b.mesh.Indices) == 0 {
		return nil, errors.New("no faces")
	}
	return b.mesh, nil
}

func (b *meshBuilder) addVertex(face obj.Face, corner int) {
	key := vertexKey{
		position: face.Vertices[corner],
		normal:   attributeIndex(face.Normals, corner),
		uv:       attributeIndex(face.Uvs, corner),
	}
	if index, ok := b.unique[key]; ok {
		b.mesh.Indices = append(b.mesh.Indices, index)
		return
	}

	positions := b.decoder.Vertices
	vertex := metadata.Vertex{
		Position: mgl32.Vec3{
			positions[key.position*3],
			positions[key.position*3+1],
			positions[key.position*3+2],
		},
		Color: mgl32.Vec3{1, 1, 1},
	}
	if normals := b.decoder.Normals; key.normal >= 0 && key.normal*3+2 < len(normals) {
		vertex.Normal = mgl32.Vec3{normals[key.normal*3], normals[key.normal*3+1], normals[key.normal*3+2]}
	}
	if uvs := b.decoder.Uvs; key.uv >= 0 && key.uv*2+1 < len(uvs) {
		vertex.UV = mgl32.Vec2{uvs[key.uv*2], uvs[key.uv*2+1]}
	}

	index := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, vertex)
	b.mesh.Indices = append(b.mesh.Indices, index)
	b.unique[key] = index
}

func attributeIndex(indices []int, corner int) int {
	if corner < len(indices) {
		return indices[corner]
	}
	return -1
}
