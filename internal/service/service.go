// Package service provides the business logic behind the scene server API
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/status"
)

var (
	// ErrPeerNotFound is returned when a peer is not configured
	ErrPeerNotFound = errors.New("peer not found")
	// ErrObjectNotFound is returned when an object does not resolve in a peer's scene
	ErrObjectNotFound = errors.New("object not found")
	// ErrUnknownScene is returned when a scene change names a scene that is not configured
	ErrUnknownScene = errors.New("unknown scene")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go SceneService

// SceneService defines the operations exposed over the simulation peers
type SceneService interface {
	// CheckReadiness returns an error unless every peer has reconciled its
	// desired scene
	CheckReadiness(ctx context.Context) error

	// ListPeers returns the transition status of every peer
	ListPeers(ctx context.Context) ([]status.TransitionStatus, error)

	// GetPeer returns the transition status of one peer
	GetPeer(ctx context.Context, name string) (*status.TransitionStatus, error)

	// SetScene requests a scene change for a peer
	SetScene(ctx context.Context, name string, ref scene.Ref) error

	// ResolveObject looks up a scene-bound object of a peer's loaded scene
	ResolveObject(ctx context.Context, name string, id uuid.UUID) (scene.Object, error)
}
