package selector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

// testRepo is a throwaway repository with a linear history.
type testRepo struct {
	dir     string
	repo    *git.Repository
	commits []plumbing.Hash
}

func setupTestRepo(t *testing.T, messages ...string) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	r := &testRepo{dir: dir, repo: repo}
	for _, message := range messages {
		r.commit(t, message)
	}
	return r
}

func (r *testRepo) commit(t *testing.T, message string, parents ...plumbing.Hash) plumbing.Hash {
	t.Helper()

	wt, err := r.repo.Worktree()
	require.NoError(t, err)

	// Each commit changes the file so the history stays linear and distinct
	n := len(r.commits)
	require.NoError(t, os.WriteFile(filepath.Join(r.dir, "CHANGES"), []byte(message), 0o644))
	_, err = wt.Add("CHANGES")
	require.NoError(t, err)

	// Explicit parents also move HEAD, which is how branches and merges are made
	hash, err := wt.Commit(message, &git.CommitOptions{
		Parents: parents,
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Date(2026, 1, 1, 0, n, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)

	r.commits = append(r.commits, hash)
	return hash
}

func (r *testRepo) run(env map[string]string) *build.Run {
	vars := map[string]string{"WORKSPACE": r.dir}
	for k, v := range env {
		vars[k] = v
	}
	return build.New("job", vars, nil)
}

func findChangelog(t *testing.T, sel *ChangelogSelector, run *build.Run) models.IssueSet {
	t.Helper()
	ids, err := sel.FindIssueIDs(context.Background(), run, nil)
	require.NoError(t, err)
	require.NotNil(t, ids)
	return ids
}

func TestChangelogWithoutPreviousBuildScansHead(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second")

	sel, err := NewChangelogSelector("", "")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(nil))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-2")), "got %v", ids.Sorted())
}

func TestChangelogSincePreviousSuccessfulCommit(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second", "Merge XYZ-3 and abc-4")

	sel, err := NewChangelogSelector("", "")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(map[string]string{
		EnvPreviousSuccessfulCommit: r.commits[0].String(),
		EnvPreviousCommit:           r.commits[1].String(),
	}))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-2", "XYZ-3", "ABC-4")), "got %v", ids.Sorted())
}

func TestChangelogFallsBackToPreviousCommit(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second", "ABC-3 third")

	sel, err := NewChangelogSelector("", "")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(map[string]string{
		EnvPreviousCommit: r.commits[1].String(),
	}))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-3")), "got %v", ids.Sorted())
}

func TestChangelogSinceOptionWins(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second", "ABC-3 third")

	sel, err := NewChangelogSelector("", r.commits[0].String())
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(map[string]string{
		EnvPreviousSuccessfulCommit: r.commits[1].String(),
	}))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-2", "ABC-3")), "got %v", ids.Sorted())
}

func TestChangelogIncludesMergedBranch(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 base", "ABC-2 previous build")
	base, previous := r.commits[0], r.commits[1]

	feature := r.commit(t, "FEAT-7 feature work", base)
	tip := r.commit(t, "FEAT-8 more feature work", feature)
	r.commit(t, "Merge branch 'feature'", previous, tip)

	sel, err := NewChangelogSelector("", previous.String())
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(nil))
	assert.True(t, ids.Equal(models.NewIssueSet("FEAT-7", "FEAT-8")), "got %v", ids.Sorted())
}

func TestChangelogUnchangedSinceHeadIsEmpty(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second")

	sel, err := NewChangelogSelector("", "HEAD")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(nil))
	assert.Equal(t, 0, ids.Len())
}

func TestChangelogUnknownRevisionScansHead(t *testing.T) {
	r := setupTestRepo(t, "ABC-1 first", "ABC-2 second")

	sel, err := NewChangelogSelector("", "0123456789abcdef0123456789abcdef01234567")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(nil))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-2")), "got %v", ids.Sorted())
}

func TestChangelogWithoutIssuesIsEmpty(t *testing.T) {
	r := setupTestRepo(t, "initial import", "fix typo")

	ids := findChangelog(t, Default().(*ChangelogSelector), r.run(map[string]string{
		EnvPreviousCommit: r.commits[0].String(),
	}))
	assert.Equal(t, 0, ids.Len())
}

func TestChangelogCustomPattern(t *testing.T) {
	r := setupTestRepo(t, "PROJ_1: first", "fixes OPS-12 and PROJ_2")

	sel, err := NewChangelogSelector(`PROJ_[0-9]+`, "")
	require.NoError(t, err)

	ids := findChangelog(t, sel, r.run(nil))
	assert.True(t, ids.Equal(models.NewIssueSet("PROJ_2")), "got %v", ids.Sorted())
}

func TestChangelogNotARepository(t *testing.T) {
	sel, err := NewChangelogSelector("", "")
	require.NoError(t, err)

	_, err = sel.FindIssueIDs(context.Background(), build.New("job", map[string]string{"WORKSPACE": t.TempDir()}, nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open git repository")
}

func TestChangelogDetectsRepositoryFromSubdirectory(t *testing.T) {
	r := setupTestRepo(t, "ABC-5 nested")
	sub := filepath.Join(r.dir, "module")
	require.NoError(t, os.Mkdir(sub, 0o755))

	sel, err := NewChangelogSelector("", "")
	require.NoError(t, err)

	ids := findChangelog(t, sel, build.New("job", map[string]string{"WORKSPACE": sub}, nil))
	assert.True(t, ids.Equal(models.NewIssueSet("ABC-5")))
}
