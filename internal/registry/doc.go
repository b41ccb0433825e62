// Package registry holds the GUID to object mapping of the last successfully
// loaded scene.
//
// A Registry is only ever changed by whole replacement: a transition builds a
// fresh Objects snapshot with Build and installs it with Publish. Readers see
// either the previous snapshot or the new one, never a mix.
package registry
