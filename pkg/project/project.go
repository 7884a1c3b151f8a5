// Package project provides the read-only directory of known construction
// projects. The directory is loaded once at startup and never mutated.
package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Project is a static reference entity describing one construction project.
type Project struct {
	ID      string `json:"id" toml:"id"`
	Name    string `json:"name" toml:"name"`
	Display string `json:"display" toml:"-"`
}

// Directory holds the immutable set of known projects.
type Directory struct {
	projects []Project
	byID     map[string]Project
}

// projectsFile is the TOML layout of a projects file:
//
//	[[projects]]
//	id = "10001"
//	name = "Harbor Tower"
type projectsFile struct {
	Projects []Project `toml:"projects"`
}

// NewDirectory builds a directory from the given projects.
// The display string is derived as "<id> - <name>".
func NewDirectory(projects []Project) (*Directory, error) {
	if len(projects) == 0 {
		return nil, errors.New("project directory cannot be empty")
	}

	byID := make(map[string]Project, len(projects))
	list := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			return nil, errors.New("project with empty id")
		}
		if _, ok := byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate project id: %s", p.ID)
		}

		p.Display = p.ID + " - " + p.Name
		byID[p.ID] = p
		list = append(list, p)
	}

	return &Directory{projects: list, byID: byID}, nil
}

// LoadDirectory reads a projects TOML file and builds a directory from it.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading projects file: %w", err)
	}

	var file projectsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing projects file: %w", err)
	}

	return NewDirectory(file.Projects)
}

// DefaultDirectory returns the built-in project set used when no projects
// file is configured.
func DefaultDirectory() *Directory {
	dir, err := NewDirectory([]Project{
		{ID: "1", Name: "Project A"},
		{ID: "2", Name: "Project B"},
		{ID: "3", Name: "Project C"},
	})
	if err != nil {
		// The built-in set is static and valid.
		panic(err)
	}

	return dir
}

// List returns all projects in the directory.
func (d *Directory) List() []Project {
	return d.projects
}

// Lookup returns the project with the given id.
func (d *Directory) Lookup(id string) (Project, bool) {
	p, ok := d.byID[id]
	return p, ok
}
