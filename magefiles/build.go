//go:build mage

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/target"
)

const shaderDir = "assets/shaders"

var shaderSources = []string{"shader.vert", "shader.frag"}

type Build mg.Namespace

// Compiles the GLSL shaders under assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders(false)
}

// Builds the engine binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "darkest-planet"), "."), withStream())
	return err
}

// buildShaders compiles every source whose .spv is missing or older. force rebuilds all.
func buildShaders(force bool) error {
	for _, src := range shaderSources {
		in := filepath.Join(shaderDir, src)
		out := in + ".spv"
		if !force {
			stale, err := target.Path(out, in)
			if err != nil {
				return err
			}
			if !stale {
				continue
			}
		}
		if _, err := executeCmd("glslc", withArgs(in, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

func isShaderSource(path string) bool {
	for _, src := range shaderSources {
		if strings.HasSuffix(path, src) {
			return true
		}
	}
	return false
}
