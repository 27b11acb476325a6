package sapling

import "reflect"

// DefaultPrepareLimit is the number of items Prepare.Tick uploads when Limit
// is not set.
const DefaultPrepareLimit = 4

// FindHook inspects an item passed to Prepare.Add. When it recognizes the
// item it appends whatever should be uploaded to queue and returns the new
// queue with true. Hooks run in registration order and the first claim wins.
type FindHook func(item any, queue []any) ([]any, bool)

// Prepare is a frame-budgeted upload queue in front of an UploadForcer. Add
// resolves items into uploadable pieces, and each Tick hands at most Limit of
// them to the forcer so a large batch of textures does not stall one frame.
//
// Items are compared with == to avoid queuing the same one twice. Items of
// an uncomparable type are queued every time they are added.
type Prepare struct {
	// Limit is the maximum number of items processed per Tick. Zero or less
	// means DefaultPrepareLimit.
	Limit int

	forcer  *UploadForcer
	finders []FindHook
	queue   []any
	done    []func()
}

// NewPrepare creates a queue feeding f, with finders for *Texture, *Node and
// *Atlas registered.
func NewPrepare(f *UploadForcer) *Prepare {
	if f == nil {
		panic("sapling: NewPrepare with nil forcer")
	}
	return &Prepare{
		forcer:  f,
		finders: []FindHook{findTexture, findNodeTextures, findAtlasPages},
	}
}

// RegisterFindHook appends h to the finder chain.
func (p *Prepare) RegisterFindHook(h FindHook) {
	if h == nil {
		panic("sapling: RegisterFindHook with nil hook")
	}
	p.finders = append(p.finders, h)
}

// Add queues item for upload. A finder may expand it, e.g. a node into the
// textures of its subtree. Items no finder recognizes are queued as they are,
// for a custom UploadHook to claim.
func (p *Prepare) Add(item any) *Prepare {
	if item == nil {
		return p
	}
	for _, find := range p.finders {
		if q, ok := find(item, p.queue); ok {
			p.queue = q
			return p
		}
	}
	p.queue = appendUnique(p.queue, item)
	return p
}

// Upload registers done to be called once the queue has drained. done may be
// nil to only flush the queue over the coming ticks.
func (p *Prepare) Upload(done func()) {
	if done != nil {
		p.done = append(p.done, done)
	}
}

// Len returns the number of items waiting to be processed.
func (p *Prepare) Len() int {
	return len(p.queue)
}

// Tick processes up to Limit queued items through the forcer and returns how
// many it processed. Items no upload hook claims are dropped. Once the queue
// is empty, pending Upload callbacks fire in registration order.
func (p *Prepare) Tick() int {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPrepareLimit
	}

	n := 0
	for len(p.queue) > 0 && n < limit {
		item := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		if !p.forcer.Process(item) {
			Logger().Debug("prepare: no upload hook claimed item", "type", typeName(item))
		}
		n++
	}
	if len(p.queue) == 0 {
		p.queue = p.queue[:0:0]
		if len(p.done) > 0 {
			done := p.done
			p.done = nil
			for _, fn := range done {
				fn()
			}
		}
	}
	return n
}

// appendUnique appends item unless queue already holds it. Items of an
// uncomparable type, such as slices or maps, are always appended.
func appendUnique(queue []any, item any) []any {
	if !reflect.TypeOf(item).Comparable() {
		return append(queue, item)
	}
	for _, q := range queue {
		if q == item {
			return queue
		}
	}
	return append(queue, item)
}

// findTexture claims *Texture items.
func findTexture(item any, queue []any) ([]any, bool) {
	tex, ok := item.(*Texture)
	if !ok {
		return queue, false
	}
	return appendTexture(queue, tex), true
}

// findNodeTextures claims *Node items and queues every texture drawn by the
// subtree, masks included.
func findNodeTextures(item any, queue []any) ([]any, bool) {
	n, ok := item.(*Node)
	if !ok {
		return queue, false
	}
	return collectNodeTextures(n, queue), true
}

func collectNodeTextures(n *Node, queue []any) []any {
	switch c := n.Content.(type) {
	case *SpriteContent:
		queue = appendTexture(queue, c.Texture)
	case *MeshContent:
		queue = appendTexture(queue, c.Texture)
	case *Rope:
		queue = appendTexture(queue, c.Texture)
	}
	if n.mask != nil {
		queue = collectNodeTextures(n.mask, queue)
	}
	for _, child := range n.children {
		queue = collectNodeTextures(child, queue)
	}
	return queue
}

// appendTexture queues tex unless it is nil, disposed, or already queued.
// Sub-textures share a base image, so they are only queued once per base.
func appendTexture(queue []any, tex *Texture) []any {
	if tex == nil || tex.IsDisposed() {
		return queue
	}
	for _, q := range queue {
		if qt, ok := q.(*Texture); ok && qt.base == tex.base {
			return queue
		}
	}
	return append(queue, tex)
}
