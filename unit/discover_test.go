package unit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDiscoverBuildsOneChildPerCppFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(root, "a.cpp"), "")
	writeFile(t, filepath.Join(root, "sub", "b.cpp"), "")
	writeFile(t, filepath.Join(root, "notes.txt"), "")

	chdir(t, dir)

	tree, err := Discover("project", "build/target")
	require.NoError(t, err)
	assert.Len(t, tree.Deps, 2)

	sources := []string{}
	for _, dep := range tree.Deps {
		sources = append(sources, dep.Source)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join("project", "a.cpp"),
		filepath.Join("project", "sub", "b.cpp"),
	}, sources)
}

func TestDiscoverAttachesHeaderDepsFromDepfile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(root, "main.cpp"), "")

	chdir(t, dir)

	objPath := ToObjectPath(filepath.Join("project", "main.cpp"))
	dFile := filepath.Join(filepath.Dir(objPath), "main.d")
	writeFile(t, dFile, objPath+": "+filepath.Join("project", "main.cpp")+" project/a.hpp\n")

	tree, err := Discover("project", "build/target")
	require.NoError(t, err)
	require.Len(t, tree.Deps, 1)
	require.Len(t, tree.Deps[0].Deps, 1)
	assert.Equal(t, "project/a.hpp", tree.Deps[0].Deps[0].Source)
}

func TestDiscoverFilteredExcludesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(root, "main.cpp"), "")
	writeFile(t, filepath.Join(root, "main_test.cpp"), "")

	chdir(t, dir)

	tree, err := DiscoverFiltered("project", "build/target", DiscoverOptions{
		Exclude: []string{"*_test.cpp"},
	})
	require.NoError(t, err)
	require.Len(t, tree.Deps, 1)
	assert.Equal(t, filepath.Join("project", "main.cpp"), tree.Deps[0].Source)
}

func TestDiscoverFilteredIncludesOnlyMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(root, "main.cpp"), "")
	writeFile(t, filepath.Join(root, "vendor", "lib.cpp"), "")

	chdir(t, dir)

	tree, err := DiscoverFiltered("project", "build/target", DiscoverOptions{
		Include: []string{"vendor/*.cpp"},
	})
	require.NoError(t, err)
	require.Len(t, tree.Deps, 1)
	assert.Equal(t, filepath.Join("project", "vendor", "lib.cpp"), tree.Deps[0].Source)
}

func TestDiscoverFilteredIncludeAndExcludeCompose(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(root, "src", "a.cpp"), "")
	writeFile(t, filepath.Join(root, "src", "a_test.cpp"), "")
	writeFile(t, filepath.Join(root, "other.cpp"), "")

	chdir(t, dir)

	tree, err := DiscoverFiltered("project", "build/target", DiscoverOptions{
		Include: []string{"src/*.cpp"},
		Exclude: []string{"src/*_test.cpp"},
	})
	require.NoError(t, err)
	require.Len(t, tree.Deps, 1)
	assert.Equal(t, filepath.Join("project", "src", "a.cpp"), tree.Deps[0].Source)
}

func TestToObjectPathMapsSrcToBuild(t *testing.T) {
	assert.Equal(t, filepath.Join("build", "pkg", "file.o"), ToObjectPath(filepath.Join("src", "pkg", "file.cpp")))
}
