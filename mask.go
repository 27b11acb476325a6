package sapling

// SetMask sets a mask node for this node. The mask's alpha channel clips
// this node and all its descendants while they render. The mask node is NOT
// part of the scene tree; its transforms are relative to the masked node.
func (n *Node) SetMask(maskNode *Node) {
	if maskNode == n {
		panic("sapling: node cannot mask itself")
	}
	n.mask = maskNode
}

// ClearMask removes the mask from this node.
func (n *Node) ClearMask() {
	n.mask = nil
}

// GetMask returns the current mask node, or nil if no mask is set.
func (n *Node) GetMask() *Node {
	return n.mask
}
