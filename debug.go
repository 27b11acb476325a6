package sapling

import (
	"fmt"
	"time"
)

// globalDebug mirrors the most recently set Scene debug flag so that node
// tree operations can run their extra checks without a scene pointer.
var globalDebug bool

// debugLog reports one frame's traversal stats at debug level.
func (s *Scene) debugLog(st renderStats, prepared int, elapsed time.Duration) {
	if !s.debug {
		return
	}
	Logger().Debug("frame",
		"visited", st.visited,
		"culled", st.culled,
		"masks", st.maskPushes,
		"prepared", prepared,
		"pending", s.prepare.Len(),
		"elapsed", elapsed,
	)
}

// debugCheckDisposed panics when a disposed node is used in a tree operation.
// Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sapling debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if n sits deeper than debugMaxTreeDepth.
func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("tree depth exceeds threshold",
			"node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

const debugMaxChildCount = 1000

// debugCheckChildCount warns if n has more than debugMaxChildCount children.
func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("child count exceeds threshold",
			"node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
