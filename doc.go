// Package sapling is a retained-mode 2D scene graph for [Ebitengine] with
// nested alpha masks and ahead-of-time texture uploads.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := sapling.NewScene()
//	// ... add nodes ...
//	sapling.Run(scene, sapling.RunConfig{
//		Title: "My Game", Width: 640, Height: 480,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Scene.Root]. Children inherit their parent's transform and alpha. What a
// node draws is its [Content]: [NewSprite], [NewMesh] and [NewRope] build
// the common ones, and [ContentFunc] adapts any function.
//
//	hero := sapling.NewSprite("hero", atlas.Texture("hero_idle"))
//	hero.X, hero.Y = 100, 50
//	scene.Root().AddChild(hero)
//
// [Render] walks the tree depth-first. A node that is invisible, not
// renderable, or has a world alpha of zero is skipped together with its
// whole subtree.
//
// # Masks
//
// [Node.SetMask] attaches a mask node that lives outside the tree. While the
// masked node and its descendants render, the [Renderer] has the mask pushed;
// it is popped after the last descendant, even when content fails. Masks
// nest, and a mask node may carry its own mask.
//
// # Uploads
//
// Ebitengine uploads image pixels the first time an image is drawn. An
// [UploadForcer] triggers that early by drawing a small crop of each texture
// through an offscreen [Surface]. [Prepare] feeds it a few items per frame:
//
//	scene.Prepare().Add(atlas).Add(levelRoot).Upload(func() {
//		startLevel()
//	})
//
// Custom item kinds are supported with [UploadHook] and [FindHook]; the
// sapling/ecs package adds a hook for [Donburi] entities.
//
// # Logging
//
// sapling is silent until [SetLogger] is given a [log/slog] logger.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package sapling
