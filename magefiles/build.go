//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

const (
	shaderSourceDir = "shaders"
	shaderOutputDir = "assets/shaders"
)

type Build mg.Namespace

// Compiles every GLSL shader in shaders/ to SPIR-V under assets/shaders/.
func (Build) Shaders() error {
	return buildShaders()
}

// Compiles the shaders and builds the viewer binary.
func (Build) Viewer() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/lumen", "."), withStream())
	return err
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}
	sources, err := shaderSources(shaderSourceDir)
	if err != nil {
		return err
	}
	for _, src := range sources {
		out := filepath.Join(shaderOutputDir, filepath.Base(src)+".spv")
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

func shaderSources(dir string) ([]string, error) {
	var sources []string
	for _, pattern := range []string{"*.vert", "*.frag"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		sources = append(sources, matches...)
	}
	return sources, nil
}
