package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotYAML = `
dependencies:
  - group_id: org.mockito
    artifact_id: mockito-core
    version: 5.15.0
    path: ${TEST_REPO_DIR}/mockito-core-5.15.0.jar
  - group_id: net.bytebuddy
    artifact_id: byte-buddy-agent
    version: 1.15.0
    path: ${TEST_REPO_DIR}/byte-buddy-agent-1.15.0.jar
test_plugins:
  - group_id: org.eclipse.tycho
    artifact_id: tycho-surefire-plugin
properties:
  tycho.testArgLine: "-Xmx512m"
`

func writeSnapshotFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "build-snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoad(t *testing.T) {
	t.Setenv("TEST_REPO_DIR", "/home/ci/.m2/repository")

	path := writeSnapshotFile(t, snapshotYAML)
	loader, err := NewLoader(path, nil)
	require.NoError(t, err)

	snap, err := loader.Load()
	require.NoError(t, err)

	require.Len(t, snap.Dependencies, 2)
	assert.Equal(t, "/home/ci/.m2/repository/mockito-core-5.15.0.jar", snap.Dependencies[0].Path)
	require.Len(t, snap.TestPlugins, 1)
	assert.Equal(t, "org.eclipse.tycho", snap.TestPlugins[0].GroupID)
	assert.Equal(t, "-Xmx512m", snap.Properties["tycho.testArgLine"])

	assert.Same(t, snap, loader.Current())
}

func TestLoaderLoadJSONSnapshot(t *testing.T) {
	// JSON is valid YAML, so hosts that emit JSON need no special casing.
	content := `{"dependencies": [{"group_id": "org.mockito", "artifact_id": "mockito-core", "version": "5.14.0", "path": "/repo/mockito.jar"}]}`
	path := writeSnapshotFile(t, content)

	loader, err := NewLoader(path, nil)
	require.NoError(t, err)

	snap, err := loader.Load()
	require.NoError(t, err)
	require.Len(t, snap.Dependencies, 1)
	assert.Equal(t, "5.14.0", snap.Dependencies[0].Version)
}

func TestLoaderLoadRejectsInvalidSnapshot(t *testing.T) {
	content := `
dependencies:
  - group_id: org.mockito
    artifact_id: mockito-core
    version: 5.15.0
    path: relative/mockito.jar
`
	path := writeSnapshotFile(t, content)

	loader, err := NewLoader(path, nil)
	require.NoError(t, err)

	_, err = loader.Load()
	require.Error(t, err)
	assert.Nil(t, loader.Current())
}

func TestLoaderLoadMissingFile(t *testing.T) {
	loader, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.NoError(t, err)

	_, err = loader.Load()
	assert.Error(t, err)
}

func TestLoaderWatch(t *testing.T) {
	t.Setenv("TEST_REPO_DIR", "/repo")

	path := writeSnapshotFile(t, snapshotYAML)
	loader, err := NewLoader(path, nil)
	require.NoError(t, err)

	_, err = loader.Load()
	require.NoError(t, err)

	updated := make(chan *Snapshot, 1)
	err = loader.Watch(func(s *Snapshot) { updated <- s }, nil)
	require.NoError(t, err)
	defer loader.Close()

	// Give the watcher a moment to register before the write.
	time.Sleep(50 * time.Millisecond)

	newContent := `
dependencies:
  - group_id: org.mockito
    artifact_id: mockito-core
    version: 5.13.0
    path: /repo/mockito-core-5.13.0.jar
`
	require.NoError(t, os.WriteFile(path, []byte(newContent), 0o644))

	select {
	case snap := <-updated:
		require.Len(t, snap.Dependencies, 1)
		assert.Equal(t, "5.13.0", snap.Dependencies[0].Version)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for snapshot update")
	}
}

func TestLoaderWatchKeepsLastGoodSnapshot(t *testing.T) {
	t.Setenv("TEST_REPO_DIR", "/repo")

	path := writeSnapshotFile(t, snapshotYAML)
	loader, err := NewLoader(path, nil)
	require.NoError(t, err)

	_, err = loader.Load()
	require.NoError(t, err)

	updated := make(chan *Snapshot, 1)
	failed := make(chan error, 1)
	err = loader.Watch(func(s *Snapshot) { updated <- s }, func(err error) { failed <- err })
	require.NoError(t, err)
	defer loader.Close()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("dependencies: [ broken"), 0o644))

	select {
	case <-updated:
		t.Fatal("should not receive an update for a broken snapshot")
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload error")
	}

	current := loader.Current()
	require.NotNil(t, current)
	assert.Len(t, current.Dependencies, 2)
}
