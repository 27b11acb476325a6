// Package ecs connects sapling's upload machinery to a [Donburi] world.
//
// [NewEntityTextureHook] lets a [sapling.Prepare] queue accept entities
// directly: an entity carrying the texture component is forced through the
// built-in texture hook, and an [UploadedEvent] is published for it.
// Subscribe to [UploadedEventType] in your systems to react once an entity's
// texture is resident.
//
// Usage:
//
//	scene := sapling.NewScene(sapling.WithHooks(
//		ecs.NewEntityTextureHook(world, ecs.TextureComponent),
//	))
//	ecs.PrepareEntities(scene.Prepare(), world, ecs.TextureComponent)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
