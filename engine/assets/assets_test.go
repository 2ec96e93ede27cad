package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func spirv(words ...uint32) []byte {
	data := make([]byte, 0, 4*(5+len(words)))
	for _, w := range append([]uint32{0x07230203, 0x00010000, 0, 1, 0}, words...) {
		data = binary.LittleEndian.AppendUint32(data, w)
	}
	return data
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path string
		want metadata.ResourceType
	}{
		{"shaders/simple_shader.vert.spv", metadata.ResourceTypeShader},
		{"models/cube.obj", metadata.ResourceTypeMesh},
		{"data/blob.bin", metadata.ResourceTypeBinary},
		{"shaders/simple_shader.vert", metadata.ResourceTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := determineAssetType(tt.path); got != tt.want {
				t.Errorf("determineAssetType(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoadAsset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "a.vert.spv"), spirv(42))
	writeFile(t, filepath.Join(dir, "data", "blob.bin"), []byte{1, 2, 3})
	writeFile(t, filepath.Join(dir, "shaders", "a.vert"), []byte("#version 450"))

	am, err := NewAssetManager(dir)
	if err != nil {
		t.Fatalf("NewAssetManager() error = %v", err)
	}
	defer am.Shutdown()

	tests := []struct {
		name     string
		wantType metadata.ResourceType
		wantErr  bool
	}{
		{"shaders/a.vert.spv", metadata.ResourceTypeShader, false},
		{"data/blob.bin", metadata.ResourceTypeBinary, false},
		{"shaders/a.vert", metadata.ResourceTypeUnknown, true},
		{"models/missing.obj", metadata.ResourceTypeUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := am.LoadAsset(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadAsset(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.Type != tt.wantType {
				t.Errorf("LoadAsset(%q).Type = %v, want %v", tt.name, res.Type, tt.wantType)
			}
		})
	}

	res, _ := am.LoadAsset("shaders/a.vert.spv")
	code, ok := res.Data.([]uint32)
	if !ok || len(code) != 6 || code[5] != 42 {
		t.Errorf("shader words = %v", res.Data)
	}
}

func TestNewAssetManagerRejectsMissingDir(t *testing.T) {
	if _, err := NewAssetManager(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("NewAssetManager() on a missing directory should fail")
	}
}

func TestWatchReportsShaderChanges(t *testing.T) {
	dir := t.TempDir()
	shader := filepath.Join(dir, "shaders", "a.frag.spv")
	writeFile(t, shader, spirv())

	am, err := NewAssetManager(dir)
	if err != nil {
		t.Fatalf("NewAssetManager() error = %v", err)
	}
	defer am.Shutdown()
	if err := am.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	// Models are indexed but not reported.
	writeFile(t, filepath.Join(dir, "shaders", "notes.obj"), []byte("o x\n"))
	writeFile(t, shader, spirv(7))

	select {
	case got := <-am.Changes():
		if got != "shaders/a.frag.spv" {
			t.Errorf("change = %q, want shaders/a.frag.spv", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}
}
