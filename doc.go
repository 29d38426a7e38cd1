// Package drape is an interactive textile pattern preview for [Ebitengine].
//
// A pattern tile is mapped onto a 3D garment model, lit by a fixed rig of
// spot lights and an invisible occluder, and composited with a light map, a
// white overlay mask and the flat product photo. Dragging on the garment
// moves the pattern; the other parameters (scale, rotation, hue, saturation,
// lightness, shadow, highlight) come from a [ParameterStore].
//
// # Quick start
//
// The simplest way to get started is [Run], which loads the asset pack from
// disk and opens a window:
//
//	cfg := drape.DefaultConfig()
//	cfg.Assets.Root = "assets"
//	if err := drape.Run(context.Background(), cfg, nil); err != nil {
//		log.Fatal(err)
//	}
//
// For full control, build a [Preview] yourself with any [AssetLoader] and
// hand it to ebiten.RunGame after starting its render loop.
//
// # Parameters
//
// [Store] is the parameter store. Components never hold a global; they are
// given the store and subscribe to it:
//
//	store.Dispatch(drape.SetScale(1.2))
//	store.Dispatch(drape.SetRotation(90))
//	store.Dispatch(drape.ResetColors())
//
// # Layers
//
// [Compositor.BuildLayers] builds, back to front:
//
//   - the garment mesh, shaded by the [LightingRig] and textured with the
//     repeating [PatternTexture];
//   - the light plane, blended with [BlendAdditiveSaturating];
//   - the overlay plane, blended with [BlendReverseSubtractiveMask];
//   - the invisible occluder sphere, which only darkens the garment.
//
// The 3D layers are drawn into a square canvas that is shown through the
// hue/saturation [ColorFilter]; the base photo is drawn over it unfiltered.
//
// # Loading
//
// [Composer.SelectPiece] cancels any load in progress and starts a new one
// under a fresh generation. Results of a superseded load never reach the
// scene, so rapid switching always settles on the last selection.
//
// # Interaction
//
// [Interaction] starts a drag only when the nearest object under the pointer
// is the garment. While dragging, every move sets the pattern offsets from
// the pointer position (see [OffsetForPointer]).
//
// # Debugging
//
// [SetDebugMode] enables per-frame timing logs. [TestRunner] replays JSON
// scripts of pointer input, store actions and snapshots.
//
// [Ebitengine]: https://ebitengine.org
package drape
