// Package scene defines the identifiers shared by every part of the scene
// transition server: scene references and the scene-bound objects surfaced
// when a scene finishes loading.
//
// A Ref identifies a loadable scene, typically its build index. The zero
// value is not a valid scene; use None to express "no scene".
//
// Objects are identified by a stable GUID. Their identity is owned by the
// content that produced them; this package never creates or destroys them.
package scene
