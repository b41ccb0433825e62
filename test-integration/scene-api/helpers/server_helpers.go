// Package helpers provides utilities for the scene server integration tests.
package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/onsi/gomega"

	sceneapp "github.com/stacklok/toolhive-scene-server/internal/app"
	"github.com/stacklok/toolhive-scene-server/internal/config"
	"github.com/stacklok/toolhive-scene-server/internal/status"
)

// ServerTestHelper manages the scene server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *sceneapp.SceneApp
	address    string
}

// NewServerTestHelper creates a new server test helper listening on a free
// local port.
func NewServerTestHelper(ctx context.Context, configPath string) (*ServerTestHelper, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to reserve a port: %w", err)
	}
	address := listener.Addr().String()
	if err := listener.Close(); err != nil {
		return nil, err
	}

	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		address:    address,
	}, nil
}

// StartServer loads the configuration and starts the scene server
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := sceneapp.NewSceneApp(s.ctx,
		sceneapp.WithConfig(cfg),
		sceneapp.WithAddress(s.address),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	go func() {
		if err := app.Start(); err != nil {
			// The test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the scene server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits until the server answers /health
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 50*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// GetReadiness makes a GET request to /readiness
func (s *ServerTestHelper) GetReadiness() (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + "/readiness")
}

// GetPeer fetches and decodes GET /v1/peers/{name}
func (s *ServerTestHelper) GetPeer(name string) (*status.TransitionStatus, error) {
	resp, err := s.httpClient.Get(fmt.Sprintf("%s/v1/peers/%s", s.baseURL, name))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer %s: status %d", name, resp.StatusCode)
	}
	var st status.TransitionStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetScene makes a PUT request to /v1/peers/{name}/scene
func (s *ServerTestHelper) SetScene(name string, index int) (*http.Response, error) {
	body := bytes.NewBufferString(fmt.Sprintf(`{"scene": %d}`, index))
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPut,
		fmt.Sprintf("%s/v1/peers/%s/scene", s.baseURL, name), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

// GetObject makes a GET request to /v1/peers/{name}/objects/{id}
func (s *ServerTestHelper) GetObject(name, id string) (*http.Response, error) {
	return s.httpClient.Get(fmt.Sprintf("%s/v1/peers/%s/objects/%s", s.baseURL, name, id))
}

// WaitForPeer polls a peer until match accepts its status
func (s *ServerTestHelper) WaitForPeer(
	name string, timeout time.Duration, match func(*status.TransitionStatus) bool,
) *status.TransitionStatus {
	var last *status.TransitionStatus
	gomega.Eventually(func() bool {
		st, err := s.GetPeer(name)
		if err != nil {
			return false
		}
		last = st
		return match(st)
	}, timeout, 20*time.Millisecond).Should(gomega.BeTrue(), "peer %s did not reach the expected state", name)
	return last
}

// GetBaseURL returns the base URL of the server
func (s *ServerTestHelper) GetBaseURL() string {
	return s.baseURL
}
