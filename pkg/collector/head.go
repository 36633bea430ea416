package collector

import (
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/gitvars/pkg/gitlib"
	"github.com/Sumatoshi-tech/gitvars/pkg/shellvars"
)

// maxRefHops bounds the symbolic reference walk so a corrupted, cyclic
// reference graph terminates with a per-hop error instead of looping.
const maxRefHops = 10

// RefHop is one step of the HEAD symbolic reference chain.
type RefHop struct {
	Name  string
	Short string
	Kind  string
	Err   string
}

// WriteVars emits the hop under its group prefix (e.g. "head_ref1_").
func (hop RefHop) WriteVars(w *shellvars.Writer) {
	w.WriteVar("name", hop.Name)
	w.WriteVar("short", hop.Short)
	w.WriteVar("kind", hop.Kind)
	w.WriteVar("error", hop.Err)
}

// Head is the resolved trail of the HEAD reference plus its relation to
// the configured upstream.
type Head struct {
	// Trail is the raw walk starting at HEAD itself.
	Trail []RefHop

	// Hash of the commit ultimately reached, "" if none was.
	Hash string

	// Ahead/Behind are nil when no upstream comparison was possible.
	Ahead  *int
	Behind *int

	// UpstreamError describes why the upstream comparison failed, or "".
	UpstreamError string
}

// emittedTrail converts the raw walk into the reported hops. The HEAD
// symref itself is dropped as noise; a detached HEAD instead surfaces the
// commit hash as the single hop so the caller always has a ref1 to show.
func (h *Head) emittedTrail() []RefHop {
	if len(h.Trail) == 0 {
		return nil
	}

	first := h.Trail[0]

	switch {
	case first.Kind == gitlib.RefKindSymbolic.String() && first.Err == "":
		return h.Trail[1:]
	case first.Kind == gitlib.RefKindDirect.String():
		return []RefHop{{Name: h.Hash, Short: h.Hash, Kind: first.Kind}}
	default:
		return h.Trail
	}
}

// resolveHead walks the HEAD chain to its terminal commit and emits the
// trail. Per-hop errors stop the walk at that hop without failing the
// substep.
func (c *Collector) resolveHead() {
	head := &Head{}
	current := "HEAD"

	for hop := 0; current != ""; hop++ {
		if hop == maxRefHops {
			head.Trail = append(head.Trail, RefHop{
				Name: current,
				Err:  fmt.Sprintf("symbolic reference chain exceeds %d hops", maxRefHops),
			})

			break
		}

		ref, err := c.repo.LookupReference(current)
		if err != nil {
			head.Trail = append(head.Trail, RefHop{Name: current, Err: err.Error()})

			break
		}

		next := RefHop{Name: ref.Name, Short: ref.ShortName(), Kind: ref.Kind.String()}
		head.Trail = append(head.Trail, next)

		switch ref.Kind {
		case gitlib.RefKindSymbolic:
			current = ref.SymbolicTarget
			if current == "" {
				head.Trail[len(head.Trail)-1].Err = "symbolic reference has no target"
			}
		case gitlib.RefKindDirect:
			head.Hash = ref.Target.String()
			current = ""
		case gitlib.RefKindUnknown:
			current = ""
		}
	}

	c.head = head

	group := c.out.Group("head")
	trail := head.emittedTrail()

	group.WriteVar("ref_length", len(trail))

	for i, hop := range trail {
		group.GroupN("ref", i+1).WriteGroup(hop)
	}

	group.WriteVar("hash", head.Hash)
}

// compareUpstream computes exact ahead/behind counts against the upstream
// tracking reference and emits them. An absent or unresolvable upstream is
// a per-field condition, not a failure of the run.
func (c *Collector) compareUpstream() {
	head := c.head
	if head == nil {
		head = &Head{}
		c.head = head
	}

	ahead, behind, err := c.repo.UpstreamDifference()
	if err != nil {
		head.UpstreamError = err.Error()
	} else {
		head.Ahead = &ahead
		head.Behind = &behind
	}

	group := c.out.Group("head")
	group.WriteVar("ahead", displayOptional(head.Ahead))
	group.WriteVar("behind", displayOptional(head.Behind))
	group.WriteVar("upstream_error", head.UpstreamError)
}

// displayOptional formats a count that may not have been collected. The
// stream always carries the variable; an unknown value is the empty string.
func displayOptional(value *int) string {
	if value == nil {
		return ""
	}

	return strconv.Itoa(*value)
}
