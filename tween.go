package sapling

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields of a Node together. Build one
// with TweenPosition, TweenScale, TweenColor, TweenAlpha or TweenRotation and
// either call Update(dt) yourself or hand it to Scene.AddTween.
//
// Every Update writes the fields and marks the node dirty, so an alpha tween
// that reaches zero makes Render skip the node's subtree from the next frame.
// A group whose node has been disposed finishes without writing.
type TweenGroup struct {
	tweens [4]*gween.Tween
	fields [4]*float64
	count  int
	target *Node

	// Done is set once every tween has finished or the group was stopped.
	Done bool

	// OnComplete, if set, runs once when the group finishes on its own.
	OnComplete func()
}

// newTweenGroup tweens each field from its current value to the matching
// entry of to.
func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, fields []*float64, to []float64) *TweenGroup {
	g := &TweenGroup{count: len(fields), target: node}
	for i, f := range fields {
		g.tweens[i] = gween.New(float32(*f), float32(to[i]), duration, fn)
		g.fields[i] = f
	}
	return g
}

// Update advances all tweens by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	finished := true
	for i := 0; i < g.count; i++ {
		v, done := g.tweens[i].Update(dt)
		*g.fields[i] = float64(v)
		if !done {
			finished = false
		}
	}
	if g.target != nil {
		g.target.MarkDirty()
	}
	if finished {
		g.Done = true
		if g.OnComplete != nil {
			g.OnComplete()
		}
	}
}

// Stop finishes the group where it is without running OnComplete.
func (g *TweenGroup) Stop() {
	g.Done = true
}

// Target returns the animated node.
func (g *TweenGroup) Target() *Node {
	return g.target
}

// TweenPosition animates node.X and node.Y to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.X, &node.Y}, []float64{toX, toY})
}

// TweenScale animates node.ScaleX and node.ScaleY to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.ScaleX, &node.ScaleY}, []float64{toSX, toSY})
}

// TweenColor animates all four components of node.Color to to.
func TweenColor(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		[]*float64{&node.Color.R, &node.Color.G, &node.Color.B, &node.Color.A},
		[]float64{to.R, to.G, to.B, to.A})
}

// TweenAlpha animates node.Alpha to to.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Alpha}, []float64{to})
}

// TweenRotation animates node.Rotation to to, in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, []*float64{&node.Rotation}, []float64{to})
}
