package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onsi/gomega"
)

// TestObject is a scene-bound object used by test scenes
type TestObject struct {
	ID   string
	Name string
	Kind string
}

// TestScene describes one scene of a generated configuration
type TestScene struct {
	Index    int
	Name     string
	Manifest string
	Objects  []TestObject
	Fail     string
}

// TestPeer describes one peer of a generated configuration
type TestPeer struct {
	Name         string
	InitialScene *int
	StartScene   *int
}

// LoaderOptions tunes the loader section of a generated configuration
type LoaderOptions struct {
	Type         string
	UnloadFrames int
	LoadFrames   int
	ReadAttempts uint
}

// Scene returns a pointer to a scene index for TestPeer fields
func Scene(i int) *int { return &i }

// WriteConfigYAML writes a YAML configuration file for testing
func WriteConfigYAML(dir string, loader LoaderOptions, peers []TestPeer, scenes []TestScene) string {
	var b strings.Builder
	b.WriteString("tickInterval: 2ms\n\n")

	fmt.Fprintf(&b, "loader:\n  type: %s\n  unloadFrames: %d\n  loadFrames: %d\n",
		loader.Type, loader.UnloadFrames, loader.LoadFrames)
	if loader.ReadAttempts > 0 {
		fmt.Fprintf(&b, "  readAttempts: %d\n", loader.ReadAttempts)
	}

	b.WriteString("\npeers:\n")
	for _, p := range peers {
		fmt.Fprintf(&b, "  - name: %s\n", p.Name)
		if p.InitialScene != nil {
			fmt.Fprintf(&b, "    initialScene: %d\n", *p.InitialScene)
		}
		if p.StartScene != nil {
			fmt.Fprintf(&b, "    startScene: %d\n", *p.StartScene)
		}
	}

	b.WriteString("\nscenes:\n")
	for _, s := range scenes {
		fmt.Fprintf(&b, "  - index: %d\n    name: %s\n", s.Index, s.Name)
		if s.Manifest != "" {
			fmt.Fprintf(&b, "    manifest: %s\n", s.Manifest)
		}
		if s.Fail != "" {
			fmt.Fprintf(&b, "    fail: %q\n", s.Fail)
		}
		if len(s.Objects) > 0 {
			b.WriteString("    objects:\n")
			for _, o := range s.Objects {
				fmt.Fprintf(&b, "      - id: %s\n        name: %s\n", o.ID, o.Name)
				if o.Kind != "" {
					fmt.Fprintf(&b, "        kind: %s\n", o.Kind)
				}
			}
		}
	}

	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte(b.String()), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return configPath
}

// WriteManifest writes a scene manifest named file into dir
func WriteManifest(dir, file, formatVersion, sceneName string, objects []TestObject) string {
	entries := make([]string, 0, len(objects))
	for _, o := range objects {
		entries = append(entries, fmt.Sprintf(`    {"id": %q, "name": %q, "kind": %q},`, o.ID, o.Name, o.Kind))
	}
	content := fmt.Sprintf("{\n  // generated by the integration suite\n  \"formatVersion\": %q,\n  \"scene\": %q,\n  \"objects\": [\n%s\n  ],\n}\n",
		formatVersion, sceneName, strings.Join(entries, "\n"))

	path := filepath.Join(dir, file)
	err := os.WriteFile(path, []byte(content), 0600)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return path
}
