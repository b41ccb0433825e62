package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-scene-server/internal/guard"
	"github.com/stacklok/toolhive-scene-server/internal/loader"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/simulation"
	"github.com/stacklok/toolhive-scene-server/internal/status"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

var (
	lobby = scene.FromIndex(0)
	arena = scene.FromIndex(1)
)

// startPeers runs a loop over one runner per name, each with a manager
// loading sw, and returns the peers.
func startPeers(t *testing.T, sw transition.Switcher, names ...string) []Peer {
	t.Helper()

	g := guard.New[transition.Manager](t.Name())
	var peers []Peer
	var runners []*simulation.Runner
	for _, name := range names {
		r := simulation.NewRunner(name, simulation.WithDesiredScene(lobby))
		m := transition.New(name, sw, transition.WithGuard(g), transition.WithInitialScene(lobby))
		r.Attach(m)
		peers = append(peers, Peer{Runner: r, Manager: m})
		runners = append(runners, r)
	}

	loop := simulation.NewLoop(time.Millisecond, runners...)
	go func() { _ = loop.Start(context.Background()) }()
	t.Cleanup(func() { _ = loop.Stop() })
	return peers
}

func TestNewSceneService_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewSceneService([]Peer{{}})
	assert.ErrorContains(t, err, "runner and a manager")

	sw := loader.NewStaticSwitcher()
	r := simulation.NewRunner("host")
	m := transition.New("host", sw)
	_, err = NewSceneService([]Peer{{Runner: r, Manager: m}, {Runner: r, Manager: m}})
	assert.ErrorContains(t, err, "duplicate peer")
}

func TestSceneService_SceneChangeLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	door := &loader.Object{ID: uuid.New(), Name: "door"}
	sw := loader.NewStaticSwitcher(
		loader.WithScene(lobby),
		loader.WithScene(arena, door),
		loader.WithFrames(1, 1),
	)
	svc, err := NewSceneService(startPeers(t, sw, "host", "client"), WithScenes(lobby, arena))
	require.NoError(t, err)

	require.NoError(t, svc.CheckReadiness(ctx))

	peers, err := svc.ListPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "host", peers[0].Peer)
	assert.Equal(t, "client", peers[1].Peer)

	require.NoError(t, svc.SetScene(ctx, "host", arena))

	require.Eventually(t, func() bool {
		st, err := svc.GetPeer(ctx, "host")
		return err == nil && st.Phase == status.PhaseComplete && st.Ready
	}, 5*time.Second, 5*time.Millisecond)

	obj, err := svc.ResolveObject(ctx, "host", door.ID)
	require.NoError(t, err)
	assert.Same(t, door, obj)

	_, err = svc.ResolveObject(ctx, "client", door.ID)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	st, err := svc.GetPeer(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, arena, st.ActiveScene)
	assert.Equal(t, 1, st.ObjectCount)
}

func TestSceneService_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, err := NewSceneService(startPeers(t, loader.NewStaticSwitcher(loader.WithScene(lobby)), "host"),
		WithScenes(lobby))
	require.NoError(t, err)

	_, err = svc.GetPeer(ctx, "nobody")
	assert.ErrorIs(t, err, ErrPeerNotFound)

	_, err = svc.ResolveObject(ctx, "nobody", uuid.New())
	assert.ErrorIs(t, err, ErrPeerNotFound)

	assert.ErrorIs(t, svc.SetScene(ctx, "nobody", lobby), ErrPeerNotFound)
	assert.ErrorIs(t, svc.SetScene(ctx, "host", arena), ErrUnknownScene)
	assert.ErrorIs(t, svc.SetScene(ctx, "host", scene.None), ErrUnknownScene)
}

func TestSceneService_NotReadyWhileTransitioning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// the arena never finishes loading
	sw := transition.SwitcherFunc(func(_, target scene.Ref, onFinished transition.FinishFunc) transition.Task {
		return transition.Sequential(func(_ context.Context, suspend func()) error {
			for target == arena {
				suspend()
			}
			onFinished(nil)
			return nil
		})
	})
	svc, err := NewSceneService(startPeers(t, sw, "host"))
	require.NoError(t, err)

	require.NoError(t, svc.SetScene(ctx, "host", arena))
	require.Eventually(t, func() bool {
		return svc.CheckReadiness(ctx) != nil
	}, 5*time.Second, 5*time.Millisecond)
	assert.ErrorContains(t, svc.CheckReadiness(ctx), "peer host is transitioning")
}

func TestSceneService_ContextDeadline(t *testing.T) {
	t.Parallel()

	// no loop is ticking this runner
	r := simulation.NewRunner("host")
	m := transition.New("host", loader.NewStaticSwitcher())
	svc, err := NewSceneService([]Peer{{Runner: r, Manager: m}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = svc.GetPeer(ctx, "host")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
