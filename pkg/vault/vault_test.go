//go:build unit

package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcharvin/issuevault/pkg/fs"
	fsmocks "github.com/tcharvin/issuevault/pkg/fs/mocks"
	"github.com/tcharvin/issuevault/pkg/logger"
	"go.uber.org/mock/gomock"
)

const (
	testFrontmatter = "---\nissue: PROJ-1\n---\n"
	testManaged     = "# [PROJ-1] Fix the thing\n"
)

func TestUpsertNote_CreatesFileWithMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PROJ", "PROJ-1.md")
	writer := NewWriter(fs.NewFS(), logger.NewNoopLogger())

	created, err := writer.UpsertNote(path, testFrontmatter, testManaged)

	require.NoError(t, err)
	assert.True(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		testFrontmatter+"\n"+BeginMarker+"\n"+testManaged+EndMarker+"\n",
		string(content))
}

func TestUpsertNote_PreservesFreeRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PROJ-1.md")
	writer := NewWriter(fs.NewFS(), logger.NewNoopLogger())

	_, err := writer.UpsertNote(path, testFrontmatter, testManaged)
	require.NoError(t, err)

	// Simulate user edits outside the managed region.
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := string(content) + "\n## My notes\n\nDo not lose this.\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))

	newManaged := "# [PROJ-1] Fix the thing (renamed)\n"
	_, err = writer.UpsertNote(path, testFrontmatter, newManaged)
	require.NoError(t, err)

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		testFrontmatter+"\n"+BeginMarker+"\n"+newManaged+EndMarker+"\n"+"\n## My notes\n\nDo not lose this.\n",
		string(updated))
}

func TestUpsertNote_MissingMarkersAppendsInsteadOfOverwriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PROJ-1.md")
	userContent := "# My own note about PROJ-1\n\nHand-written.\n"
	require.NoError(t, os.WriteFile(path, []byte(userContent), 0644))

	writer := NewWriter(fs.NewFS(), logger.NewNoopLogger())
	created, err := writer.UpsertNote(path, testFrontmatter, testManaged)

	require.NoError(t, err)
	assert.False(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		userContent+"\n"+BeginMarker+"\n"+testManaged+EndMarker+"\n",
		string(content))
}

func TestUpsertNote_UnchangedContentSkipsWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	path := "/vault/Issues/PROJ/PROJ-1.md"
	existing := testFrontmatter + "\n" + BeginMarker + "\n" + testManaged + EndMarker + "\n"

	mockFS := fsmocks.NewMockFS(ctrl)
	mockFS.EXPECT().Exists(path).Return(true, nil)
	mockFS.EXPECT().ReadFile(path).Return([]byte(existing), nil)
	// No WriteFileAtomic expectation: unchanged issues must not churn files.

	writer := NewWriter(mockFS, logger.NewNoopLogger())
	created, err := writer.UpsertNote(path, testFrontmatter, testManaged)

	require.NoError(t, err)
	assert.False(t, created)
}

func TestUpsertNote_WriteFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	path := "/vault/Issues/PROJ/PROJ-1.md"
	writeErr := errors.New("disk full")

	mockFS := fsmocks.NewMockFS(ctrl)
	mockFS.EXPECT().Exists(path).Return(false, nil)
	mockFS.EXPECT().MkdirAll("/vault/Issues/PROJ", gomock.Any()).Return(nil)
	mockFS.EXPECT().WriteFileAtomic(path, gomock.Any(), gomock.Any()).Return(writeErr)

	writer := NewWriter(mockFS, logger.NewNoopLogger())
	_, err := writer.UpsertNote(path, testFrontmatter, testManaged)

	assert.ErrorIs(t, err, writeErr)
}

func TestUpsertNote_IsIdempotentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "PROJ-1.md")
	writer := NewWriter(fs.NewFS(), logger.NewNoopLogger())

	_, err := writer.UpsertNote(path, testFrontmatter, testManaged)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = writer.UpsertNote(path, testFrontmatter, testManaged)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
