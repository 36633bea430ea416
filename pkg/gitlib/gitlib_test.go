package gitlib_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitvars/pkg/gitlib"
)

// Repository tests.

func TestOpenRepository(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "content")
	tr.Commit("initial")

	repo := tr.Open()

	assert.Equal(t, tr.Path, repo.Path())
	assert.NotNil(t, repo.Native())
	assert.False(t, repo.IsBare())
	assert.Equal(t, filepath.Clean(tr.Path), filepath.Clean(repo.Workdir()))
}

func TestOpenRepositoryNotFound(t *testing.T) {
	repo, err := gitlib.OpenRepository("/nonexistent/path/to/repo")

	assert.Nil(t, repo)
	require.Error(t, err)
	assert.True(t, gitlib.IsNotFound(err))
}

func TestOpenRepositoryFromEnv(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	hash := tr.Commit("initial")

	t.Setenv("GIT_DIR", filepath.Join(tr.Path, ".git"))

	repo, err := gitlib.OpenRepositoryFromEnv()
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	ref, err := repo.LookupReference("refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, hash, ref.Target)
}

func TestIsNotFoundPlainError(t *testing.T) {
	assert.False(t, gitlib.IsNotFound(assert.AnError))
	assert.False(t, gitlib.IsNotFound(nil))
}

func TestIsEmpty(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	repo := tr.Open()

	empty, err := repo.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	empty, err = repo.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)
}

// Reference tests.

func TestLookupReferenceSymbolicHead(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	repo := tr.Open()

	ref, err := repo.LookupReference("HEAD")
	require.NoError(t, err)

	assert.Equal(t, "HEAD", ref.Name)
	assert.Equal(t, gitlib.RefKindSymbolic, ref.Kind)
	assert.Equal(t, "refs/heads/main", ref.SymbolicTarget)
}

func TestLookupReferenceDirectBranch(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	hash := tr.Commit("initial")

	repo := tr.Open()

	ref, err := repo.LookupReference("refs/heads/main")
	require.NoError(t, err)

	assert.Equal(t, "refs/heads/main", ref.Name)
	assert.Equal(t, gitlib.RefKindDirect, ref.Kind)
	assert.Equal(t, hash, ref.Target)
	assert.Equal(t, "main", ref.ShortName())
}

func TestLookupReferenceMissing(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	repo := tr.Open()

	_, err := repo.LookupReference("refs/heads/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup reference")
}

func TestRefShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "refs/heads/main", want: "main"},
		{name: "refs/heads/feature/x", want: "feature/x"},
		{name: "refs/tags/v1.0", want: "v1.0"},
		{name: "refs/remotes/origin/main", want: "refs/remotes/origin/main"},
		{name: "HEAD", want: "HEAD"},
	}

	for _, tt := range tests {
		ref := gitlib.Ref{Name: tt.name}
		assert.Equal(t, tt.want, ref.ShortName(), tt.name)
	}
}

func TestRefKindString(t *testing.T) {
	assert.Equal(t, "Direct", gitlib.RefKindDirect.String())
	assert.Equal(t, "Symbolic", gitlib.RefKindSymbolic.String())
	assert.Equal(t, "", gitlib.RefKindUnknown.String())
}

// Upstream tests.

func TestUpstreamDifferenceNoUpstream(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	repo := tr.Open()

	_, _, err := repo.UpstreamDifference()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find upstream")
}

func TestUpstreamDifferenceAhead(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	first := tr.Commit("first")
	tr.SetUpstream(first)

	tr.WriteFile("a.txt", "2a")
	tr.Commit("second")

	repo := tr.Open()

	ahead, behind, err := repo.UpstreamDifference()
	require.NoError(t, err)
	assert.Equal(t, 1, ahead)
	assert.Equal(t, 0, behind)
}

func TestUpstreamDifferenceBehind(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	first := tr.Commit("first")
	tr.SetUpstream(first)

	tr.WriteFile("a.txt", "2a")
	second := tr.Commit("second")

	// Remote advanced to the second commit while main stays at the first.
	tr.SetRemoteRef(second)
	tr.SetHead("refs/heads/main")

	ref, err := tr.Native.References.Create("refs/heads/main", first.ToOid(), true, "test")
	require.NoError(t, err)
	ref.Free()

	repo := tr.Open()

	ahead, behind, err := repo.UpstreamDifference()
	require.NoError(t, err)
	assert.Equal(t, 0, ahead)
	assert.Equal(t, 1, behind)
}

// Status tests.

func TestCountStatusCleanTree(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	repo := tr.Open()

	counts, err := repo.CountStatus()
	require.NoError(t, err)
	assert.Equal(t, gitlib.StatusCounts{}, counts)
}

func TestCountStatusBuckets(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("committed.txt", "1")
	tr.WriteFile("deleted.txt", "1")
	tr.Commit("initial")

	tr.WriteFile("untracked.txt", "new")
	tr.WriteFile("committed.txt", "modified")
	tr.DeleteFile("deleted.txt")
	tr.WriteFile("staged.txt", "staged")
	tr.StageFile("staged.txt")

	repo := tr.Open()

	counts, err := repo.CountStatus()
	require.NoError(t, err)

	assert.Equal(t, 1, counts.Untracked)
	assert.Equal(t, 2, counts.Unstaged) // modified + deleted
	assert.Equal(t, 1, counts.Staged)
	assert.Equal(t, 0, counts.Conflicted)
}

func TestCountStatusStagedAndUnstagedSamePath(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1")
	tr.Commit("initial")

	tr.WriteFile("a.txt", "2")
	tr.StageFile("a.txt")
	tr.WriteFile("a.txt", "3")

	repo := tr.Open()

	counts, err := repo.CountStatus()
	require.NoError(t, err)

	// One path in both buckets, never in untracked.
	assert.Equal(t, 0, counts.Untracked)
	assert.Equal(t, 1, counts.Unstaged)
	assert.Equal(t, 1, counts.Staged)
}

func TestCountStatusConflictedExclusive(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "base\n")
	tr.Commit("initial")

	tr.Conflict("a.txt")

	repo := tr.Open()

	counts, err := repo.CountStatus()
	require.NoError(t, err)

	// The conflicted path lands in no other bucket.
	assert.Equal(t, 1, counts.Conflicted)
	assert.Equal(t, 0, counts.Untracked)
	assert.Equal(t, 0, counts.Unstaged)
	assert.Equal(t, 0, counts.Staged)
}

func TestCountStatusHonorsIgnoreRules(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile(".gitignore", "ignored.txt\n")
	tr.Commit("initial")

	tr.WriteFile("ignored.txt", "invisible")

	repo := tr.Open()

	counts, err := repo.CountStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Untracked)
}

func TestStashCount(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	tr.Commit("initial")

	repo := tr.Open()

	count, err := repo.StashCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	tr.WriteFile("a.txt", "2a")
	tr.Stash("wip")

	count, err = repo.StashCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Hash tests.

func TestHashString(t *testing.T) {
	hash := gitlib.HashFromOid(nil)
	assert.Equal(t, "0000000000000000000000000000000000000000", hash.String())
}

func TestHashRoundTrip(t *testing.T) {
	tr := gitlib.NewTestRepo(t)
	tr.WriteFile("a.txt", "1a")
	hash := tr.Commit("initial")

	assert.Len(t, hash.String(), gitlib.HashHexSize)
	assert.Equal(t, hash, gitlib.HashFromOid(hash.ToOid()))
}
