// Package project provides string-art project file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stria/internal/generator"
)

// File represents a string-art project file (.stria.json). It records which
// image to use and how to run the generator; it does not store results.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image path (relative to project file)
	ImagePath string `json:"image,omitempty"`

	Params generator.Params `json:"params"`

	// Output prefix (relative to project file); defaults to <name>_stringart
	OutputPrefix string `json:"output_prefix,omitempty"`

	// Write the SVG thread layout alongside the other artifacts
	WriteLayout bool `json:"write_layout,omitempty"`
}

// New creates a new project file with default settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Params:   generator.DefaultParams(),
	}
}

// Load loads a project from a file. Missing params fall back to defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	proj := File{Params: generator.DefaultParams()}
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", filepath.Base(path), err)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImage sets the image path (relative to project).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (p *File) GetImagePath(projectPath string) string {
	return p.resolve(projectPath, p.ImagePath)
}

// GetOutputPrefix returns the output prefix resolved against the project
// directory.
func (p *File) GetOutputPrefix(projectPath string) string {
	prefix := p.OutputPrefix
	if prefix == "" {
		name := p.Name
		if name == "" {
			base := filepath.Base(projectPath)
			name = strings.TrimSuffix(base, filepath.Ext(base))
			name = strings.TrimSuffix(name, ".stria")
		}
		prefix = name + "_stringart"
	}
	return p.resolve(projectPath, prefix)
}

func (p *File) resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
