package moqtdeps

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Library is one entry of the dependency manifest. Exactly one of Tag
// or Ref pins the source; Tag wins when both are present.
type Library struct {
	Name string `yaml:"-"`
	URL  string `yaml:"url"`
	Tag  string `yaml:"tag"`
	Ref  string `yaml:"ref"`
}

// Pin returns the revision the library is locked to, or "" when the
// manifest leaves it floating.
func (l Library) Pin() string {
	if l.Tag != "" {
		return l.Tag
	}
	return l.Ref
}

// Manifest is the pinned dependency set, read once at startup and
// immutable afterwards. Libraries keeps the declaration order of the
// file: the matrix runner builds in exactly that order.
type Manifest struct {
	Libraries []Library
}

// LoadManifest reads and decodes deps.yaml. The top level must be a
// mapping of library name to {url, tag|ref}; decoding goes through
// yaml.Node so the declaration order survives.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrManifest, path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrManifest, path, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrManifest, path)
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: top level must be a mapping of library name to source", ErrManifest, path)
	}

	m := &Manifest{}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		var lib Library
		if err := doc.Content[i+1].Decode(&lib); err != nil {
			return nil, fmt.Errorf("%w: entry %q: %v", ErrManifest, name, err)
		}
		if lib.URL == "" {
			return nil, fmt.Errorf("%w: entry %q has no url", ErrManifest, name)
		}
		lib.Name = name
		m.Libraries = append(m.Libraries, lib)
	}
	if len(m.Libraries) == 0 {
		return nil, fmt.Errorf("%w: %s declares no libraries", ErrManifest, path)
	}
	return m, nil
}

// Get looks a library up by name.
func (m *Manifest) Get(name string) (Library, bool) {
	for _, lib := range m.Libraries {
		if lib.Name == name {
			return lib, true
		}
	}
	return Library{}, false
}

// Select resolves a -library flag value ("all" or a comma-joined subset)
// into libraries in manifest order.
func (m *Manifest) Select(names []string) ([]Library, error) {
	if len(names) == 0 {
		return m.Libraries, nil
	}
	requested := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "all" {
			return m.Libraries, nil
		}
		if _, ok := m.Get(n); !ok {
			return nil, fmt.Errorf("%w: library %q is not declared in the manifest", ErrManifest, n)
		}
		requested[n] = true
	}
	var libs []Library
	for _, lib := range m.Libraries {
		if requested[lib.Name] {
			libs = append(libs, lib)
		}
	}
	return libs, nil
}
