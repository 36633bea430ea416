package gitlib

import (
	"errors"
	"fmt"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

// errUnresolvedTarget indicates a reference that should carry a commit hash
// but does not.
var errUnresolvedTarget = errors.New("reference has no resolved target")

// RefKind classifies a reference by what it points at.
type RefKind int

const (
	// RefKindUnknown is a reference whose kind libgit2 could not report.
	RefKindUnknown RefKind = iota
	// RefKindDirect is a reference pointing directly at a commit.
	RefKindDirect
	// RefKindSymbolic is a reference pointing at another reference.
	RefKindSymbolic
)

// String returns the kind label used in emitted output.
func (k RefKind) String() string {
	switch k {
	case RefKindDirect:
		return "Direct"
	case RefKindSymbolic:
		return "Symbolic"
	case RefKindUnknown:
		return ""
	}

	return ""
}

// Ref is a snapshot of a single reference: its full name, its kind, and
// whichever target applies to that kind.
type Ref struct {
	Name           string
	Kind           RefKind
	Target         Hash   // commit hash, direct references only
	SymbolicTarget string // next reference name, symbolic references only
}

// ShortName returns the branch or tag name when the reference lives under
// refs/heads/ or refs/tags/, otherwise the full name.
func (ref Ref) ShortName() string {
	for _, prefix := range []string{"refs/heads/", "refs/tags/"} {
		if short, ok := strings.CutPrefix(ref.Name, prefix); ok {
			return short
		}
	}

	return ref.Name
}

// LookupReference resolves a single hop of a reference chain by name.
func (r *Repository) LookupReference(name string) (Ref, error) {
	native, err := r.repo.References.Lookup(name)
	if err != nil {
		return Ref{}, fmt.Errorf("lookup reference %q: %w", name, err)
	}
	defer native.Free()

	ref := Ref{Name: native.Name()}

	switch native.Type() {
	case git2go.ReferenceOid:
		ref.Kind = RefKindDirect
		ref.Target = HashFromOid(native.Target())
	case git2go.ReferenceSymbolic:
		ref.Kind = RefKindSymbolic
		ref.SymbolicTarget = native.SymbolicTarget()
	default:
		ref.Kind = RefKindUnknown
	}

	return ref, nil
}

// UpstreamDifference returns the exact (ahead, behind) commit counts between
// HEAD and its configured upstream tracking reference, computed from commit
// graph reachability. Absence of an upstream surfaces as an error from the
// upstream lookup; the caller records it as a per-field condition.
func (r *Repository) UpstreamDifference() (int, int, error) {
	headRef, err := r.repo.Head()
	if err != nil {
		return 0, 0, fmt.Errorf("resolve HEAD: %w", err)
	}
	defer headRef.Free()

	localOid := headRef.Target()
	if localOid == nil {
		return 0, 0, fmt.Errorf("resolve HEAD: %w", errUnresolvedTarget)
	}

	upstreamRef, err := headRef.Branch().Upstream()
	if err != nil {
		return 0, 0, fmt.Errorf("find upstream: %w", err)
	}
	defer upstreamRef.Free()

	upstreamOid := upstreamRef.Target()
	if upstreamOid == nil {
		return 0, 0, fmt.Errorf("find upstream: %w", errUnresolvedTarget)
	}

	ahead, behind, err := r.repo.AheadBehind(localOid, upstreamOid)
	if err != nil {
		return 0, 0, fmt.Errorf("graph ahead/behind: %w", err)
	}

	return ahead, behind, nil
}
