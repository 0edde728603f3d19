package chain

import "rejoin/internal/state"

type linkOutcome int

const (
	linkNone linkOutcome = iota
	linkNew
	linkExtended
	linkPrepended
	linkJoined
	linkConflict
)

func (o linkOutcome) String() string {
	switch o {
	case linkNew:
		return "new"
	case linkExtended:
		return "extended"
	case linkPrepended:
		return "prepended"
	case linkJoined:
		return "joined"
	case linkConflict:
		return "conflict"
	default:
		return "unchanged"
	}
}

type position struct {
	chain int
	index int
}

func positions(chains []state.Chain) map[string]position {
	out := make(map[string]position)
	for ci, c := range chains {
		for i, path := range c {
			out[path] = position{chain: ci, index: i}
		}
	}
	return out
}

// link records that right directly follows left. The chain ending at left is
// extended and a chain starting at right is merged onto it, so a path never
// belongs to two chains. Any other placement of either path is a conflict
// and leaves chains untouched.
func link(chains []state.Chain, left, right string) ([]state.Chain, linkOutcome) {
	pos := positions(chains)
	lp, leftIn := pos[left]
	rp, rightIn := pos[right]

	if leftIn && rightIn && lp.chain == rp.chain && rp.index == lp.index+1 {
		return chains, linkNone
	}
	leftIsTail := leftIn && lp.index == len(chains[lp.chain])-1
	rightIsHead := rightIn && rp.index == 0
	if (leftIn && !leftIsTail) || (rightIn && !rightIsHead) {
		return chains, linkConflict
	}

	switch {
	case leftIn && rightIn:
		if lp.chain == rp.chain {
			return chains, linkConflict
		}
		chains[lp.chain] = append(chains[lp.chain], chains[rp.chain]...)
		return removeChain(chains, rp.chain), linkJoined
	case leftIn:
		chains[lp.chain] = append(chains[lp.chain], right)
		return chains, linkExtended
	case rightIn:
		chains[rp.chain] = append(state.Chain{left}, chains[rp.chain]...)
		return chains, linkPrepended
	default:
		return append(chains, state.Chain{left, right}), linkNew
	}
}

func removeChain(chains []state.Chain, idx int) []state.Chain {
	out := make([]state.Chain, 0, len(chains)-1)
	out = append(out, chains[:idx]...)
	return append(out, chains[idx+1:]...)
}

func cloneChains(chains []state.Chain) []state.Chain {
	out := make([]state.Chain, len(chains))
	for i, c := range chains {
		out[i] = c.Clone()
	}
	return out
}
