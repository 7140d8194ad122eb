// internal/settings/root_test.go
//
// Repository and installation root discovery.
//
// Run: go test ./internal/settings -run Root -v

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempDir returns a symlink-resolved temp dir so paths compare equal to
// what climb reports (macOS /var vs /private/var).
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestFindRepositoryRoot_FromNestedDir(t *testing.T) {
	repo := tempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(repo, RepoMarker), 0o755))
	nested := filepath.Join(repo, "src", "pkg", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, ok := FindRepositoryRoot(nested)
	require.True(t, ok)
	assert.Equal(t, repo, got)
}

func TestFindRepositoryRoot_IgnoresMarkerFile(t *testing.T) {
	outer := tempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(outer, RepoMarker), 0o755))
	inner := filepath.Join(outer, "worktree")
	writeFile(t, filepath.Join(inner, RepoMarker), "gitdir: elsewhere\n")

	got, ok := FindRepositoryRoot(inner)
	require.True(t, ok)
	assert.Equal(t, outer, got)
}

func TestClimb_TerminatesAtFilesystemRoot(t *testing.T) {
	deep := filepath.Join(tempDir(t), "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	var visited []string
	_, ok := climb(deep, func(dir string) bool {
		visited = append(visited, dir)
		return false
	})
	assert.False(t, ok)
	require.NotEmpty(t, visited)
	last := visited[len(visited)-1]
	assert.Equal(t, last, filepath.Dir(last), "search must end at the filesystem root")
}

func TestClimb_FromFilesystemRootChecksOnce(t *testing.T) {
	root := string(filepath.Separator)

	calls := 0
	_, ok := climb(root, func(string) bool {
		calls++
		return false
	})
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestInstallRoot_EnvWins(t *testing.T) {
	t.Setenv(RootEnv, "/opt/reviewhook")
	assert.Equal(t, "/opt/reviewhook", InstallRoot())
}

func TestInstallRoot_ClimbsToSettingsDir(t *testing.T) {
	t.Setenv(RootEnv, "")
	root := tempDir(t)
	writeFile(t, filepath.Join(root, settingsDir, primaryFile), "[config]\n")
	sub := filepath.Join(root, "cmd", "reviewhook")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(sub))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Equal(t, root, InstallRoot())
}
