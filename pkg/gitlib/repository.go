// Package gitlib provides a unified interface for git repository inspection
// using libgit2. It exposes exactly the object-database surface the status
// collector needs: repository discovery, reference lookup, upstream
// ahead/behind counts, working-tree status buckets, and stash length.
package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path, searching upward
// for a .git directory the way git itself does.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(path, 0, "")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// OpenRepositoryFromEnv opens a repository honoring git's environment
// conventions: GIT_DIR when set, otherwise an upward search from the
// current directory.
func OpenRepositoryFromEnv() (*Repository, error) {
	repo, err := git2go.OpenRepositoryExtended(".", git2go.RepositoryOpenFromEnv, "")
	if err != nil {
		return nil, fmt.Errorf("open repository from env: %w", err)
	}

	return &Repository{repo: repo, path: repo.Path()}, nil
}

// IsNotFound reports whether err means no repository could be located, as
// opposed to a repository that exists but could not be read.
func IsNotFound(err error) bool {
	var gitErr *git2go.GitError
	if errors.As(err, &gitErr) {
		return gitErr.Code == git2go.ErrorCodeNotFound
	}

	return false
}

// Path returns the path the repository was opened with.
func (r *Repository) Path() string {
	return r.path
}

// Workdir returns the working directory, or "" for a bare repository.
func (r *Repository) Workdir() string {
	return r.repo.Workdir()
}

// IsBare reports whether the repository has no working directory.
func (r *Repository) IsBare() bool {
	return r.repo.IsBare()
}

// IsEmpty reports whether the repository has no commits (HEAD unborn).
func (r *Repository) IsEmpty() (bool, error) {
	empty, err := r.repo.IsEmpty()
	if err != nil {
		return false, fmt.Errorf("check repository empty: %w", err)
	}

	return empty, nil
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
