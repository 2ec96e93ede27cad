package systems

import (
	gomath "math"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/scene"
)

func TestNewJobSystemValidation(t *testing.T) {
	tests := []struct {
		name        string
		workers     int
		channelSize int
		wantErr     error
	}{
		{"no workers", 0, 1, ErrNoWorkers},
		{"negative channel", 2, -1, ErrNegativeChannelSize},
		{"valid", 2, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js, err := NewJobSystem(tt.workers, tt.channelSize)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewJobSystem() error = %v, want %v", err, tt.wantErr)
			}
			if js != nil {
				js.Shutdown()
			}
		})
	}
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()

	var completed, failed atomic.Int32
	for i := 0; i < 10; i++ {
		js.Submit(JobTask{
			Name: "job",
			OnStart: func() (interface{}, error) {
				if i%2 == 0 {
					return nil, errors.New("even")
				}
				return i, nil
			},
			OnComplete: func(interface{}) { completed.Add(1) },
			OnFailure:  func(error) { failed.Add(1) },
		})
	}
	js.Wait()

	if completed.Load() != 5 || failed.Load() != 5 {
		t.Errorf("completed %d, failed %d, want 5 and 5", completed.Load(), failed.Load())
	}
}

func TestMeshLoaderDecodeKeepsOrder(t *testing.T) {
	js, err := NewJobSystem(4, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer js.Shutdown()

	source := func(name string) (*metadata.MeshData, error) {
		if name == "broken.obj" {
			return nil, errors.New("no faces")
		}
		return &metadata.MeshData{Name: name}, nil
	}
	ms := NewMeshLoaderSystem(js, source)

	names := []string{"cube.obj", "quad.obj", "smooth_vase.obj", "flat_vase.obj"}
	meshes, err := ms.Decode(names)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i, mesh := range meshes {
		if mesh.Name != names[i] {
			t.Errorf("meshes[%d] = %s, want %s", i, mesh.Name, names[i])
		}
	}

	if _, err := ms.Decode([]string{"cube.obj", "broken.obj"}); err == nil {
		t.Errorf("Decode() with a broken mesh should fail")
	}
}

func TestShaderSystem(t *testing.T) {
	resources := map[string]*metadata.Resource{
		"shaders/simple_shader.vert.spv": {Type: metadata.ResourceTypeShader, Data: []uint32{0x07230203, 1, 2, 3, 4}},
		"shaders/raw.bin":                {Type: metadata.ResourceTypeBinary, Data: []byte{1, 2, 3}},
	}
	source := func(name string) (*metadata.Resource, error) {
		if res, ok := resources[name]; ok {
			return res, nil
		}
		return nil, errors.Newf("asset not found: %s", name)
	}

	if _, err := NewShaderSystem(ShaderSystemConfig{VertexShader: "a.spv"}, nil, source); err == nil {
		t.Fatalf("NewShaderSystem() without a fragment shader should fail")
	}

	ss, err := NewShaderSystem(ShaderSystemConfig{
		VertexShader:   "shaders/simple_shader.vert.spv",
		FragmentShader: "shaders/simple_shader.frag.spv",
	}, nil, source)
	if err != nil {
		t.Fatal(err)
	}

	if !ss.Uses("shaders/simple_shader.frag.spv") || ss.Uses("shaders/other.frag.spv") {
		t.Errorf("Uses() does not match the configured shaders")
	}

	tests := []struct {
		name      string
		wantErr   bool
		wantSPIRV bool
	}{
		{"shaders/simple_shader.vert.spv", false, false},
		{"shaders/raw.bin", true, true},
		{"shaders/missing.spv", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ss.loadCode(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadCode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSPIRV && !errors.Is(err, core.ErrInvalidSPIRV) {
				t.Errorf("error %v is not ErrInvalidSPIRV", err)
			}
			if err == nil && len(code) != 5 {
				t.Errorf("len(code) = %d, want 5", len(code))
			}
		})
	}
}

func TestDrawOrder(t *testing.T) {
	gen := core.NewIDGenerator()
	objects := scene.Map{}
	for i := 0; i < 6; i++ {
		g := scene.NewGameObject(gen)
		if i != 2 {
			g.MeshID = i % 3
		}
		objects.Add(g)
	}

	want := []uint32{0, 1, 3, 4, 5}
	for i := 0; i < 5; i++ {
		if got := drawOrder(objects); !slices.Equal(got, want) {
			t.Fatalf("drawOrder() = %v, want %v", got, want)
		}
	}
}

func TestPushConstants(t *testing.T) {
	if simplePushConstantSize != 128 {
		t.Errorf("push constant size = %d, want 128", simplePushConstantSize)
	}

	g := scene.NewGameObject(core.NewIDGenerator())
	g.Transform.Translation = mgl32.Vec3{.5, .5, 0}
	g.Transform.Scale = mgl32.Vec3{3, 1.5, 3}

	push := pushConstants(g)
	if push.ModelMatrix.Col(3) != (mgl32.Vec4{.5, .5, 0, 1}) {
		t.Errorf("model translation = %v", push.ModelMatrix.Col(3))
	}
	if got := push.NormalMatrix.At(1, 1); !mgl32.FloatEqualThreshold(got, 1/1.5, 1e-6) {
		t.Errorf("normal matrix y scale = %v, want %v", got, 1/1.5)
	}
}

func TestMoveInPlaneXZ(t *testing.T) {
	tests := []struct {
		name            string
		keys            []core.KeyCode
		start           scene.Transform
		dt              float32
		wantTranslation mgl32.Vec3
		wantRotation    mgl32.Vec3
	}{
		{
			name:            "idle",
			start:           scene.NewTransform(),
			dt:              1,
			wantTranslation: mgl32.Vec3{},
			wantRotation:    mgl32.Vec3{},
		},
		{
			name:            "forward at yaw zero",
			keys:            []core.KeyCode{core.KEY_W},
			start:           scene.NewTransform(),
			dt:              0.5,
			wantTranslation: mgl32.Vec3{0, 0, 1.5},
		},
		{
			name:            "up is negative y",
			keys:            []core.KeyCode{core.KEY_E},
			start:           scene.NewTransform(),
			dt:              1,
			wantTranslation: mgl32.Vec3{0, -3, 0},
		},
		{
			name:            "diagonal is normalized",
			keys:            []core.KeyCode{core.KEY_W, core.KEY_D},
			start:           scene.NewTransform(),
			dt:              1,
			wantTranslation: mgl32.Vec3{3 / float32(gomath.Sqrt2), 0, 3 / float32(gomath.Sqrt2)},
		},
		{
			name:         "pitch is clamped",
			keys:         []core.KeyCode{core.KEY_UP},
			start:        scene.Transform{Rotation: mgl32.Vec3{1.4, 0, 0}, Scale: mgl32.Vec3{1, 1, 1}},
			dt:           1,
			wantRotation: mgl32.Vec3{1.5, 0, 0},
		},
		{
			name:         "yaw wraps below zero",
			keys:         []core.KeyCode{core.KEY_LEFT},
			start:        scene.NewTransform(),
			dt:           1,
			wantRotation: mgl32.Vec3{0, 2*gomath.Pi - 1.5, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := core.NewInput()
			for _, k := range tt.keys {
				input.ProcessKey(k, true)
			}
			g := scene.NewGameObject(core.NewIDGenerator())
			g.Transform = tt.start

			NewKeyboardMovementController(3, 1.5).MoveInPlaneXZ(input, tt.dt, g)

			if !g.Transform.Translation.ApproxEqualThreshold(tt.wantTranslation, 1e-4) {
				t.Errorf("translation = %v, want %v", g.Transform.Translation, tt.wantTranslation)
			}
			if !g.Transform.Rotation.ApproxEqualThreshold(tt.wantRotation, 1e-4) {
				t.Errorf("rotation = %v, want %v", g.Transform.Rotation, tt.wantRotation)
			}
		})
	}
}
