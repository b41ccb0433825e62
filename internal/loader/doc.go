// Package loader provides content-loading back ends for scene transitions.
//
// StaticSwitcher serves scenes from an in-memory table and is used for demos
// and tests. ManifestSwitcher reads one JSON manifest per scene from disk.
// Manifests may contain comments and trailing commas, are validated against
// an embedded JSON Schema and must carry a compatible formatVersion:
//
//	{
//	  // lobby
//	  "formatVersion": "1.0.0",
//	  "scene": "lobby",
//	  "objects": [
//	    {"id": "5b8a4d6e-0f5d-4c39-9a8e-0f1c8e7b2a11", "name": "spawn", "kind": "anchor"},
//	  ],
//	}
//
// Manifests are read on a worker goroutine; the transition task polls for
// the result once per tick so manager state is only touched on the tick
// timeline.
package loader
