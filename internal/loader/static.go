package loader

import (
	"context"
	"fmt"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

type staticScene struct {
	objects []scene.Object
	err     error
}

// StaticSwitcher loads scenes from an in-memory table.
type StaticSwitcher struct {
	scenes       map[scene.Ref]staticScene
	unloadFrames int
	loadFrames   int
}

// StaticOption configures a StaticSwitcher
type StaticOption func(*StaticSwitcher)

// WithScene registers the objects of a scene
func WithScene(ref scene.Ref, objects ...scene.Object) StaticOption {
	return func(s *StaticSwitcher) {
		entry := s.scenes[ref]
		entry.objects = append(entry.objects, objects...)
		s.scenes[ref] = entry
	}
}

// WithSceneError makes loading ref fail with err
func WithSceneError(ref scene.Ref, err error) StaticOption {
	return func(s *StaticSwitcher) {
		entry := s.scenes[ref]
		entry.err = err
		s.scenes[ref] = entry
	}
}

// WithFrames sets how many ticks unloading and loading each take
func WithFrames(unload, load int) StaticOption {
	return func(s *StaticSwitcher) {
		s.unloadFrames = max(unload, 0)
		s.loadFrames = max(load, 0)
	}
}

// NewStaticSwitcher creates a static back end
func NewStaticSwitcher(opts ...StaticOption) *StaticSwitcher {
	s := &StaticSwitcher{
		scenes: make(map[scene.Ref]staticScene),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SwitchScene implements transition.Switcher
func (s *StaticSwitcher) SwitchScene(_, target scene.Ref, onFinished transition.FinishFunc) transition.Task {
	return transition.Sequential(func(_ context.Context, suspend func()) error {
		for range s.unloadFrames {
			suspend()
		}

		entry, ok := s.scenes[target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownScene, target)
		}
		if entry.err != nil {
			return entry.err
		}

		for range s.loadFrames {
			suspend()
		}

		onFinished(entry.objects)
		return nil
	})
}
