// Package loader unpacks a .sb3 archive and decodes its project.json into
// an ast.Project. It is an external collaborator, not one of the three
// core subsystems: the core's only real input contract is an already-
// parsed ast.Project value.
package loader

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/blockvm/corevm/internal/ast"
)

// Load opens path as a zip archive, decodes its project.json member, and
// converts the wire representation into an ast.Project.
func Load(path string) (ast.Project, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ast.Project{}, fmt.Errorf("opening %s as a zip archive: %w", path, err)
	}
	defer r.Close()

	var projFile *zip.File
	for _, f := range r.File {
		if f.Name == "project.json" {
			projFile = f
			break
		}
	}
	if projFile == nil {
		return ast.Project{}, fmt.Errorf("%s: no project.json member", path)
	}

	rc, err := projFile.Open()
	if err != nil {
		return ast.Project{}, fmt.Errorf("reading project.json from %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return ast.Project{}, fmt.Errorf("reading project.json from %s: %w", path, err)
	}

	return decode(data)
}

// LoadJSON decodes a bare project.json byte slice, bypassing the zip
// archive entirely — used by tests that exercise hand-built projects
// without packaging a real .sb3 file.
func LoadJSON(data []byte) (ast.Project, error) {
	return decode(data)
}

func decode(data []byte) (ast.Project, error) {
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return ast.Project{}, fmt.Errorf("parsing project.json: %w", err)
	}
	return w.toAST()
}
