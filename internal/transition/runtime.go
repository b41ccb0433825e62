package transition

import (
	"context"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
)

// Runtime is the simulation peer a Manager is attached to.
//
//go:generate mockgen -destination=mocks/mock_runtime.go -package=mocks github.com/stacklok/toolhive-scene-server/internal/transition Runtime
type Runtime interface {
	// CurrentScene returns the authoritative desired scene
	CurrentScene() scene.Ref

	// InvokeSceneLoadStart notifies that a transition has started
	InvokeSceneLoadStart(ctx context.Context)

	// InvokeSceneLoadDone notifies that a transition completed and its
	// objects are resolvable
	InvokeSceneLoadDone(ctx context.Context)

	// RegisterUniqueObjects hands the objects of a newly loaded scene to the
	// runtime's own bookkeeping
	RegisterUniqueObjects(ctx context.Context, objects []scene.Object)
}
