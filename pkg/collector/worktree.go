package collector

// scanWorktree tallies differing paths by bucket plus the stash length and
// emits whatever was collectable. A failed status walk (e.g. an unreadable
// index entry) omits the count fields rather than failing the run; the
// stash count is independent and still reported when readable.
func (c *Collector) scanWorktree() {
	counts, err := c.repo.CountStatus()
	if err != nil {
		c.log.Warn("working tree scan failed", "error", err)
	} else {
		c.counts = &counts
	}

	stash, err := c.repo.StashCount()
	if err != nil {
		c.log.Warn("stash count failed", "error", err)
	} else {
		c.stash = &stash
	}

	if c.counts != nil {
		c.out.WriteVar("untracked_count", c.counts.Untracked)
		c.out.WriteVar("unstaged_count", c.counts.Unstaged)
		c.out.WriteVar("staged_count", c.counts.Staged)
		c.out.WriteVar("conflicted_count", c.counts.Conflicted)
	}

	if c.stash != nil {
		c.out.WriteVar("stash_count", *c.stash)
	}
}
