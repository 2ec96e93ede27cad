//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the viewer with lumen.toml.
func (Run) Viewer() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run viewer...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "lumen.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}
