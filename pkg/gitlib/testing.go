package gitlib

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"
)

// TestRepo is a scratch repository for integration testing. The branch is
// pinned to refs/heads/main regardless of the host's init.defaultBranch.
type TestRepo struct {
	T      *testing.T
	Path   string
	Native *git2go.Repository
}

// NewTestRepo creates an initialized repository in a temp directory.
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()

	dir := t.TempDir()

	repo, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(repo.Free)

	err = repo.SetHead("refs/heads/main")
	require.NoError(t, err)

	return &TestRepo{T: t, Path: dir, Native: repo}
}

// WriteFile creates or overwrites a file in the working directory.
func (tr *TestRepo) WriteFile(name, content string) {
	tr.T.Helper()

	path := filepath.Join(tr.Path, name)
	dir := filepath.Dir(path)

	if dir != tr.Path {
		err := os.MkdirAll(dir, 0o755)
		require.NoError(tr.T, err)
	}

	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(tr.T, err)
}

// DeleteFile removes a file from the working directory.
func (tr *TestRepo) DeleteFile(name string) {
	tr.T.Helper()

	err := os.Remove(filepath.Join(tr.Path, name))
	require.NoError(tr.T, err)
}

// StageFile adds a single path to the index without committing.
func (tr *TestRepo) StageFile(name string) {
	tr.T.Helper()

	index, err := tr.Native.Index()
	require.NoError(tr.T, err)

	defer index.Free()

	err = index.AddByPath(name)
	require.NoError(tr.T, err)

	err = index.Write()
	require.NoError(tr.T, err)
}

// Commit stages all files and creates a commit on the current branch.
func (tr *TestRepo) Commit(message string) Hash {
	tr.T.Helper()

	index, err := tr.Native.Index()
	require.NoError(tr.T, err)

	defer index.Free()

	err = index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil)
	require.NoError(tr.T, err)

	err = index.Write()
	require.NoError(tr.T, err)

	treeID, err := index.WriteTree()
	require.NoError(tr.T, err)

	tree, err := tr.Native.LookupTree(treeID)
	require.NoError(tr.T, err)

	defer tree.Free()

	sig := testSignature()

	var parents []*git2go.Commit

	head, err := tr.Native.Head()
	if err == nil {
		headCommit, lookupErr := tr.Native.LookupCommit(head.Target())
		require.NoError(tr.T, lookupErr)

		parents = append(parents, headCommit)

		head.Free()
	}

	oid, err := tr.Native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(tr.T, err)

	for _, parent := range parents {
		parent.Free()
	}

	return HashFromOid(oid)
}

// SetUpstream configures refs/heads/main to track refs/remotes/origin/main
// and points the remote-tracking reference at target.
func (tr *TestRepo) SetUpstream(target Hash) {
	tr.T.Helper()

	_, err := tr.Native.Remotes.Create("origin", tr.Path)
	require.NoError(tr.T, err)

	tr.SetRemoteRef(target)

	cfg, err := tr.Native.Config()
	require.NoError(tr.T, err)

	defer cfg.Free()

	err = cfg.SetString("branch.main.remote", "origin")
	require.NoError(tr.T, err)

	err = cfg.SetString("branch.main.merge", "refs/heads/main")
	require.NoError(tr.T, err)
}

// SetRemoteRef moves refs/remotes/origin/main to target.
func (tr *TestRepo) SetRemoteRef(target Hash) {
	tr.T.Helper()

	ref, err := tr.Native.References.Create("refs/remotes/origin/main", target.ToOid(), true, "test")
	require.NoError(tr.T, err)

	ref.Free()
}

// DetachHead points HEAD directly at the current branch tip.
func (tr *TestRepo) DetachHead() {
	tr.T.Helper()

	head, err := tr.Native.Head()
	require.NoError(tr.T, err)

	defer head.Free()

	err = tr.Native.SetHeadDetached(head.Target())
	require.NoError(tr.T, err)
}

// SetSymbolicRef creates (or moves) a symbolic reference.
func (tr *TestRepo) SetSymbolicRef(name, target string) {
	tr.T.Helper()

	ref, err := tr.Native.References.CreateSymbolic(name, target, true, "test")
	require.NoError(tr.T, err)

	ref.Free()
}

// SetHead repoints the HEAD symbolic reference.
func (tr *TestRepo) SetHead(target string) {
	tr.T.Helper()

	err := tr.Native.SetHead(target)
	require.NoError(tr.T, err)
}

// Conflict records a three-way index conflict for path and leaves the
// conflict-markered file in the working tree, the state a merge stopped
// on conflicting edits leaves behind.
func (tr *TestRepo) Conflict(path string) {
	tr.T.Helper()

	entry := func(content string) *git2go.IndexEntry {
		oid, err := tr.Native.CreateBlobFromBuffer([]byte(content))
		require.NoError(tr.T, err)

		return &git2go.IndexEntry{Path: path, Id: oid, Mode: git2go.FilemodeBlob}
	}

	index, err := tr.Native.Index()
	require.NoError(tr.T, err)

	defer index.Free()

	err = index.AddConflict(entry("base\n"), entry("ours\n"), entry("theirs\n"))
	require.NoError(tr.T, err)

	err = index.Write()
	require.NoError(tr.T, err)

	tr.WriteFile(path, "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> other\n")
}

// Stash saves the current working-tree changes onto the stash list.
func (tr *TestRepo) Stash(message string) {
	tr.T.Helper()

	oid, err := tr.Native.Stashes.Save(testSignature(), message, git2go.StashDefault)
	require.NoError(tr.T, err)
	require.NotNil(tr.T, oid)
}

// Open opens the fixture through the gitlib wrapper and registers cleanup.
func (tr *TestRepo) Open() *Repository {
	tr.T.Helper()

	repo, err := OpenRepository(tr.Path)
	require.NoError(tr.T, err)

	tr.T.Cleanup(repo.Free)

	return repo
}

func testSignature() *git2go.Signature {
	return &git2go.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Now(),
	}
}
