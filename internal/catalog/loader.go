package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed courses/*.yaml
var builtinCourses embed.FS

// Builtin loads the course packs compiled into the binary.
func Builtin() (*Catalog, error) {
	packs, err := LoadPacks(builtinCourses, "courses")
	if err != nil {
		return nil, err
	}
	return New(packs)
}

// LoadDir loads course packs from a directory on disk, e.g. a user override.
func LoadDir(dir string) (*Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	packs, err := LoadPacks(os.DirFS(dir), ".")
	if err != nil {
		return nil, err
	}
	return New(packs)
}

// LoadPacks reads every *.yaml/*.yml file directly under root. Packs are
// ordered by their order field, then by course id.
func LoadPacks(fsys fs.FS, root string) ([]Pack, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, err
	}
	packs := make([]Pack, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		p := path.Join(root, name)
		pack, err := readPack(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("load course %s: %w", p, err)
		}
		pack.Path = p
		packs = append(packs, pack)
	}
	sort.SliceStable(packs, func(i, j int) bool {
		if packs[i].Order != packs[j].Order {
			return packs[i].Order < packs[j].Order
		}
		return packs[i].CourseID < packs[j].CourseID
	})
	return packs, nil
}

func readPack(fsys fs.FS, p string) (Pack, error) {
	var pack Pack
	b, err := fs.ReadFile(fsys, p)
	if err != nil {
		return pack, err
	}
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return pack, err
	}
	for i := range pack.Units {
		pack.Units[i] = strings.TrimSpace(pack.Units[i])
	}
	if err := pack.Validate(); err != nil {
		return pack, err
	}
	return pack, nil
}
