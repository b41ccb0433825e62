package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-scene-server/internal/config"
	"github.com/stacklok/toolhive-scene-server/internal/loader"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/service"
	"github.com/stacklok/toolhive-scene-server/internal/simulation"
	"github.com/stacklok/toolhive-scene-server/internal/telemetry"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Loop ticks every peer runner
	Loop *simulation.Loop

	// Peers pairs each runner with its scene manager
	Peers []service.Peer

	// SceneService answers API queries against the peers
	SceneService service.SceneService
}

// buildSwitcher creates the scene loader selected by the configuration
func buildSwitcher(cfg *config.Config) (transition.Switcher, error) {
	switch cfg.GetLoaderType() {
	case config.LoaderTypeStatic:
		opts := []loader.StaticOption{
			loader.WithFrames(cfg.Loader.UnloadFrames, cfg.Loader.LoadFrames),
		}
		for i := range cfg.Scenes {
			sc := &cfg.Scenes[i]
			objects := make([]scene.Object, 0, len(sc.Objects))
			for _, oc := range sc.Objects {
				id, err := uuid.Parse(oc.ID)
				if err != nil {
					return nil, fmt.Errorf("scene %d: invalid object id %q: %w", sc.Index, oc.ID, err)
				}
				objects = append(objects, &loader.Object{ID: id, Name: oc.Name, Kind: oc.Kind})
			}
			opts = append(opts, loader.WithScene(sc.Ref(), objects...))
			if sc.Fail != "" {
				opts = append(opts, loader.WithSceneError(sc.Ref(), errors.New(sc.Fail)))
			}
		}
		return loader.NewStaticSwitcher(opts...), nil

	case config.LoaderTypeManifest:
		manifests := make(map[scene.Ref]string, len(cfg.Scenes))
		for i := range cfg.Scenes {
			manifests[cfg.Scenes[i].Ref()] = cfg.Scenes[i].Manifest
		}
		opts := []loader.ManifestOption{
			loader.WithUnloadFrames(cfg.Loader.UnloadFrames),
			loader.WithFileLocks(cfg.Loader.LockManifests),
		}
		if cfg.Loader.FormatConstraint != "" {
			opts = append(opts, loader.WithFormatConstraint(cfg.Loader.FormatConstraint))
		}
		if cfg.Loader.ReadAttempts > 0 {
			opts = append(opts, loader.WithReadRetry(cfg.Loader.ReadAttempts, defaultManifestRetryDelay))
		}
		return loader.NewManifestSwitcher(manifests, opts...)

	default:
		return nil, fmt.Errorf("unsupported loader type: %s", cfg.Loader.Type)
	}
}

// buildPeers creates one runner and one attached scene manager per
// configured peer. All managers share the process-wide loading guard.
func buildPeers(
	cfg *config.Config,
	switcher transition.Switcher,
	metrics *telemetry.TransitionMetrics,
	tracer trace.Tracer,
) []service.Peer {
	peers := make([]service.Peer, 0, len(cfg.Peers))
	for _, pc := range cfg.Peers {
		initial := config.SceneRef(pc.InitialScene)
		desired := initial
		if pc.StartScene != nil {
			desired = config.SceneRef(pc.StartScene)
		}

		runner := simulation.NewRunner(pc.Name, simulation.WithDesiredScene(desired))
		manager := transition.New(pc.Name, switcher,
			transition.WithInitialScene(initial),
			transition.WithMetrics(metrics),
			transition.WithTracer(tracer),
		)
		runner.Attach(manager)

		slog.Info("Peer configured",
			"peer", pc.Name,
			"initial_scene", initial.String(),
			"desired_scene", desired.String())

		peers = append(peers, service.Peer{Runner: runner, Manager: manager})
	}
	return peers
}

func sceneRefs(cfg *config.Config) []scene.Ref {
	refs := make([]scene.Ref, 0, len(cfg.Scenes))
	for i := range cfg.Scenes {
		refs = append(refs, cfg.Scenes[i].Ref())
	}
	return refs
}

func runners(peers []service.Peer) []*simulation.Runner {
	out := make([]*simulation.Runner, 0, len(peers))
	for _, p := range peers {
		out = append(out, p.Runner)
	}
	return out
}
