package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/simulation"
	"github.com/stacklok/toolhive-scene-server/internal/status"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

// Peer pairs a runner with the scene manager attached to it
type Peer struct {
	Runner  *simulation.Runner
	Manager *transition.Manager
}

// Option configures the peer service
type Option func(*peerService)

// WithScenes restricts scene changes to the given scenes
func WithScenes(refs ...scene.Ref) Option {
	return func(s *peerService) {
		if s.scenes == nil {
			s.scenes = make(map[scene.Ref]bool, len(refs))
		}
		for _, ref := range refs {
			s.scenes[ref] = true
		}
	}
}

type peerService struct {
	peers  map[string]Peer
	order  []string
	scenes map[scene.Ref]bool
}

// NewSceneService creates a SceneService over peers. All reads of manager
// state are run on the owning runner's tick.
func NewSceneService(peers []Peer, opts ...Option) (SceneService, error) {
	s := &peerService{peers: make(map[string]Peer, len(peers))}
	for _, p := range peers {
		if p.Runner == nil || p.Manager == nil {
			return nil, fmt.Errorf("peer must have a runner and a manager")
		}
		name := p.Runner.Name()
		if _, exists := s.peers[name]; exists {
			return nil, fmt.Errorf("duplicate peer %q", name)
		}
		s.peers[name] = p
		s.order = append(s.order, name)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *peerService) peer(name string) (Peer, error) {
	p, ok := s.peers[name]
	if !ok {
		return Peer{}, fmt.Errorf("%w: %s", ErrPeerNotFound, name)
	}
	return p, nil
}

// CheckReadiness implements SceneService.CheckReadiness
func (s *peerService) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, name := range s.order {
		p := s.peers[name]
		var ready bool
		if err := p.Runner.Do(ctx, func() { ready = p.Manager.IsReady() }); err != nil {
			return err
		}
		if !ready {
			errs = append(errs, fmt.Errorf("peer %s is transitioning", name))
		}
	}
	return errors.Join(errs...)
}

// ListPeers implements SceneService.ListPeers
func (s *peerService) ListPeers(ctx context.Context) ([]status.TransitionStatus, error) {
	result := make([]status.TransitionStatus, 0, len(s.order))
	for _, name := range s.order {
		st, err := s.GetPeer(ctx, name)
		if err != nil {
			return nil, err
		}
		result = append(result, *st)
	}
	return result, nil
}

// GetPeer implements SceneService.GetPeer
func (s *peerService) GetPeer(ctx context.Context, name string) (*status.TransitionStatus, error) {
	p, err := s.peer(name)
	if err != nil {
		return nil, err
	}

	var st status.TransitionStatus
	if err := p.Runner.Do(ctx, func() { st = p.Manager.Status() }); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetScene implements SceneService.SetScene
func (s *peerService) SetScene(_ context.Context, name string, ref scene.Ref) error {
	p, err := s.peer(name)
	if err != nil {
		return err
	}
	if !ref.IsValid() || (s.scenes != nil && !s.scenes[ref]) {
		return fmt.Errorf("%w: %s", ErrUnknownScene, ref)
	}
	p.Runner.SetScene(ref)
	return nil
}

// ResolveObject implements SceneService.ResolveObject
func (s *peerService) ResolveObject(ctx context.Context, name string, id uuid.UUID) (scene.Object, error) {
	p, err := s.peer(name)
	if err != nil {
		return nil, err
	}

	var (
		obj scene.Object
		ok  bool
	)
	if err := p.Runner.Do(ctx, func() { obj, ok = p.Manager.Resolve(id) }); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return obj, nil
}
