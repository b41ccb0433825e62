// Package simulation provides the owning runtime for scene managers.
//
// A Runner is one simulation peer: it holds the authoritative desired scene,
// emits scene load notifications to hooks and keeps the runtime-wide
// bookkeeping of unique scene objects. A Loop ticks every Runner on a single
// goroutine, which is the cooperative timeline all manager state lives on.
// Other goroutines talk to a Runner through SetScene and Do, which queue work
// for the next tick.
package simulation
