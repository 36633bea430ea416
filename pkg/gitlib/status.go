package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// StatusCounts tallies differing working-tree and index paths by bucket.
// A conflicted path counts only as conflicted; a path can otherwise land in
// both the staged and unstaged buckets at once.
type StatusCounts struct {
	Untracked  int
	Unstaged   int
	Staged     int
	Conflicted int
}

// Status bit groups for bucket classification.
const (
	unstagedBits = git2go.StatusWtModified |
		git2go.StatusWtDeleted |
		git2go.StatusWtTypeChange |
		git2go.StatusWtRenamed

	stagedBits = git2go.StatusIndexNew |
		git2go.StatusIndexModified |
		git2go.StatusIndexDeleted |
		git2go.StatusIndexRenamed |
		git2go.StatusIndexTypeChange
)

// CountStatus classifies every differing path reported by libgit2. Untracked
// detection honors the repository's ignore rules; submodules are excluded.
// Bare repositories have no working tree to scan and report zero counts.
func (r *Repository) CountStatus() (StatusCounts, error) {
	if r.repo.IsBare() {
		return StatusCounts{}, nil
	}

	opts := &git2go.StatusOptions{
		Show:  git2go.StatusShowIndexAndWorkdir,
		Flags: git2go.StatusOptIncludeUntracked | git2go.StatusOptExcludeSubmodules,
	}

	list, err := r.repo.StatusList(opts)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("list statuses: %w", err)
	}
	defer list.Free()

	count, err := list.EntryCount()
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count statuses: %w", err)
	}

	var counts StatusCounts

	for i := range count {
		entry, entryErr := list.ByIndex(i)
		if entryErr != nil {
			return StatusCounts{}, fmt.Errorf("status entry %d: %w", i, entryErr)
		}

		status := entry.Status

		if status&git2go.StatusConflicted != 0 {
			counts.Conflicted++

			continue
		}

		if status&git2go.StatusWtNew != 0 {
			counts.Untracked++
		}

		if status&unstagedBits != 0 {
			counts.Unstaged++
		}

		if status&stagedBits != 0 {
			counts.Staged++
		}
	}

	return counts, nil
}

// StashCount returns the number of stashed working-tree states. Only the
// list length matters; stash contents are never inspected.
func (r *Repository) StashCount() (int, error) {
	count := 0

	err := r.repo.Stashes.Foreach(func(_ int, _ string, _ *git2go.Oid) error {
		count++

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk stash list: %w", err)
	}

	return count, nil
}
