package manifest

import (
	"io/fs"
	"path"
	"slices"
	"strings"
)

// IncludedFiles lists the files under source.dir in fsys that would be
// bundled: those whose extension appears in source.include_exts. An empty
// extension list includes every file. Hidden directories are skipped.
// Paths are slash separated and relative to source.dir.
func (m *Manifest) IncludedFiles(fsys fs.FS) ([]string, error) {
	root := path.Clean(strings.TrimPrefix(m.App.SourceDir, "./"))
	if root == "" || root == "/" {
		root = "."
	}

	exts := make(map[string]bool, len(m.App.SourceIncludeExts))
	for _, e := range m.App.SourceIncludeExts {
		exts[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	var out []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
		if len(exts) > 0 && !exts[ext] {
			return nil
		}
		rel := p
		if root != "." {
			rel = strings.TrimPrefix(p, root+"/")
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
