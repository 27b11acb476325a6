package ecs

import (
	"github.com/phanxgames/sapling"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TextureData is the component NewEntityTextureHook reads.
type TextureData struct {
	Texture *sapling.Texture
}

// TextureComponent is a ready-made component type holding TextureData.
var TextureComponent = donburi.NewComponentType[TextureData]()

// UploadedEvent reports that an entity's texture was drawn through the upload
// surface.
type UploadedEvent struct {
	Entity  donburi.Entity
	Texture *sapling.Texture
}

// UploadedEventType is the Donburi event type for forced entity textures.
// Events are queued; call ProcessEvents in a system to deliver them.
var UploadedEventType = events.NewEventType[UploadedEvent]()

// NewEntityTextureHook returns an upload hook that claims donburi.Entity items
// carrying component. The entity's texture goes through
// sapling.UploadIfTexture, after which an UploadedEvent is published to world.
// Entities with a nil or disposed texture are claimed without drawing.
func NewEntityTextureHook(world donburi.World, component *donburi.ComponentType[TextureData]) sapling.UploadHook {
	return func(f *sapling.UploadForcer, item any) bool {
		e, ok := item.(donburi.Entity)
		if !ok || !world.Valid(e) {
			return false
		}
		entry := world.Entry(e)
		if !entry.HasComponent(component) {
			return false
		}
		tex := component.Get(entry).Texture
		if tex == nil || tex.IsDisposed() {
			return true
		}
		sapling.UploadIfTexture(f, tex)
		UploadedEventType.Publish(world, UploadedEvent{Entity: e, Texture: tex})
		return true
	}
}

// PrepareEntities queues every entity in world that carries component.
func PrepareEntities(p *sapling.Prepare, world donburi.World, component *donburi.ComponentType[TextureData]) {
	component.Each(world, func(entry *donburi.Entry) {
		p.Add(entry.Entity())
	})
}
