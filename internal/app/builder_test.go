package app

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-scene-server/internal/config"
	"github.com/stacklok/toolhive-scene-server/internal/loader"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

func intPtr(i int) *int { return &i }

var doorID = "6f1c2a4e-8d3b-4c55-9a57-1f0b7d2e9c10"

// createValidTestConfig returns a static two-scene, two-peer configuration
func createValidTestConfig() *config.Config {
	return &config.Config{
		Address:      "127.0.0.1:0",
		TickInterval: "1ms",
		Loader:       config.LoaderConfig{Type: config.LoaderTypeStatic},
		Peers: []config.PeerConfig{
			{Name: "host", InitialScene: intPtr(0)},
			{Name: "client", InitialScene: intPtr(0), StartScene: intPtr(1)},
		},
		Scenes: []config.SceneConfig{
			{Index: 0, Name: "lobby"},
			{Index: 1, Name: "arena", Objects: []config.ObjectConfig{
				{ID: doorID, Name: "door", Kind: "prop"},
			}},
		},
	}
}

func TestBaseConfig(t *testing.T) {
	t.Parallel()

	_, err := baseConfig()
	require.ErrorContains(t, err, "config is required")

	cfg, err := baseConfig(WithConfig(createValidTestConfig()))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", cfg.address)
	assert.Equal(t, defaultRequestTimeout, cfg.requestTimeout)

	cfg, err = baseConfig(WithConfig(&config.Config{}))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAddress, cfg.address)

	failing := func(*sceneAppConfig) error { return errors.New("boom") }
	_, err = baseConfig(WithConfig(createValidTestConfig()), failing)
	require.ErrorContains(t, err, "boom")
}

func TestWithAddress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "valid address", address: ":9999"},
		{name: "valid address with host", address: "127.0.0.1:9999"},
		{name: "valid address with hostname", address: "localhost:9999"},
		{name: "ephemeral port", address: ":0"},
		{name: "invalid empty address", address: "", wantErr: true},
		{name: "invalid empty port", address: ":", wantErr: true},
		{name: "missing port", address: "localhost", wantErr: true},
		{name: "port out of range", address: "localhost:999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &sceneAppConfig{}
			err := WithAddress(tt.address)(cfg)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.address, cfg.address)
		})
	}
}

func TestWithSwitcher(t *testing.T) {
	t.Parallel()

	cfg := &sceneAppConfig{}
	require.Error(t, WithSwitcher(nil)(cfg))

	sw := loader.NewStaticSwitcher()
	require.NoError(t, WithSwitcher(sw)(cfg))
	assert.Same(t, sw, cfg.switcher)
}

func TestWithMiddlewares(t *testing.T) {
	t.Parallel()

	mw := func(next http.Handler) http.Handler { return next }
	cfg := &sceneAppConfig{}
	require.NoError(t, WithMiddlewares(mw, mw)(cfg))
	assert.Len(t, cfg.middlewares, 2)
}

func TestBuildSwitcher(t *testing.T) {
	t.Parallel()

	t.Run("static", func(t *testing.T) {
		t.Parallel()
		cfg := createValidTestConfig()
		cfg.Scenes[0].Fail = "lobby is broken"

		sw, err := buildSwitcher(cfg)
		require.NoError(t, err)
		static, ok := sw.(*loader.StaticSwitcher)
		require.True(t, ok)

		var got []scene.Object
		task := static.SwitchScene(scene.None, scene.FromIndex(1), func(objects []scene.Object) { got = objects })
		_, err = runToCompletion(t, task)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uuid.MustParse(doorID), got[0].GUID())

		_, err = runToCompletion(t, static.SwitchScene(scene.None, scene.FromIndex(0), func([]scene.Object) {}))
		assert.ErrorContains(t, err, "lobby is broken")
	})

	t.Run("static with invalid object id", func(t *testing.T) {
		t.Parallel()
		cfg := createValidTestConfig()
		cfg.Scenes[1].Objects[0].ID = "door"

		_, err := buildSwitcher(cfg)
		assert.ErrorContains(t, err, "invalid object id")
	})

	t.Run("manifest", func(t *testing.T) {
		t.Parallel()
		cfg := createValidTestConfig()
		cfg.Loader = config.LoaderConfig{
			Type:             config.LoaderTypeManifest,
			FormatConstraint: "^1.0.0",
			ReadAttempts:     2,
			LockManifests:    true,
		}
		cfg.Scenes = []config.SceneConfig{{Index: 0, Manifest: "lobby.json"}}

		sw, err := buildSwitcher(cfg)
		require.NoError(t, err)
		assert.IsType(t, &loader.ManifestSwitcher{}, sw)
	})

	t.Run("manifest with bad constraint", func(t *testing.T) {
		t.Parallel()
		cfg := createValidTestConfig()
		cfg.Loader = config.LoaderConfig{Type: config.LoaderTypeManifest, FormatConstraint: "not a range"}

		_, err := buildSwitcher(cfg)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		cfg := createValidTestConfig()
		cfg.Loader.Type = "ftp"

		_, err := buildSwitcher(cfg)
		assert.ErrorContains(t, err, "unsupported loader type")
	})
}

func TestBuildPeers(t *testing.T) {
	t.Parallel()

	cfg := createValidTestConfig()
	peers := buildPeers(cfg, loader.NewStaticSwitcher(), nil, nil)
	require.Len(t, peers, 2)

	assert.Equal(t, "host", peers[0].Runner.Name())
	assert.Equal(t, scene.FromIndex(0), peers[0].Runner.CurrentScene())
	assert.Equal(t, scene.FromIndex(0), peers[0].Manager.ActiveScene())

	assert.Equal(t, "client", peers[1].Runner.Name())
	assert.Equal(t, scene.FromIndex(1), peers[1].Runner.CurrentScene())
	assert.Equal(t, scene.FromIndex(0), peers[1].Manager.ActiveScene())

	assert.Equal(t, []scene.Ref{scene.FromIndex(0), scene.FromIndex(1)}, sceneRefs(cfg))
	assert.Len(t, runners(peers), 2)
}

// runToCompletion steps task until it completes or fails
func runToCompletion(t *testing.T, task transition.Task) (int, error) {
	t.Helper()
	ctx := t.Context()
	for steps := 1; steps < 1000; steps++ {
		step, err := task.Step(ctx)
		if err != nil {
			return steps, err
		}
		if step == transition.StepDone {
			return steps, nil
		}
	}
	t.Fatal("task did not complete")
	return 0, nil
}
