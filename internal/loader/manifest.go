package loader

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cenkalti/backoff/v5"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"

	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/transition"
)

const (
	manifestSchemaURL = "manifest.schema.json"

	// DefaultFormatConstraint accepts every 1.x manifest
	DefaultFormatConstraint = "^1.0.0"

	defaultMaxAttempts = 3
)

// ErrManifestLocked is returned when a writer holds the manifest lock
var ErrManifestLocked = errors.New("manifest is locked by a writer")

//go:embed manifest.schema.json
var manifestSchema []byte

// ManifestSwitcher loads scenes from JSON manifest files.
type ManifestSwitcher struct {
	manifests    map[scene.Ref]string
	schema       *jsonschema.Schema
	format       *semver.Constraints
	unloadFrames int
	maxAttempts  uint
	retryDelay   time.Duration
	lockFiles    bool
}

// ManifestOption configures a ManifestSwitcher
type ManifestOption func(*ManifestSwitcher) error

// WithFormatConstraint sets the accepted manifest formatVersion range
func WithFormatConstraint(constraint string) ManifestOption {
	return func(s *ManifestSwitcher) error {
		c, err := semver.NewConstraint(constraint)
		if err != nil {
			return fmt.Errorf("invalid format constraint %q: %w", constraint, err)
		}
		s.format = c
		return nil
	}
}

// WithUnloadFrames sets how many ticks unloading the previous scene takes
func WithUnloadFrames(frames int) ManifestOption {
	return func(s *ManifestSwitcher) error {
		s.unloadFrames = max(frames, 0)
		return nil
	}
}

// WithReadRetry sets how often a failed manifest read is attempted and the
// initial delay between attempts. Missing files and invalid manifests are
// never retried.
func WithReadRetry(attempts uint, delay time.Duration) ManifestOption {
	return func(s *ManifestSwitcher) error {
		if attempts == 0 {
			return fmt.Errorf("read attempts must be at least 1")
		}
		s.maxAttempts = attempts
		s.retryDelay = delay
		return nil
	}
}

// WithFileLocks takes a shared lock on "<manifest>.lock" while reading, so
// tools publishing manifests can hold an exclusive lock while writing.
func WithFileLocks(enabled bool) ManifestOption {
	return func(s *ManifestSwitcher) error {
		s.lockFiles = enabled
		return nil
	}
}

// NewManifestSwitcher creates a manifest back end for the given scene to
// manifest path table.
func NewManifestSwitcher(manifests map[scene.Ref]string, opts ...ManifestOption) (*ManifestSwitcher, error) {
	schema, err := compileManifestSchema()
	if err != nil {
		return nil, err
	}

	s := &ManifestSwitcher{
		manifests:   make(map[scene.Ref]string, len(manifests)),
		schema:      schema,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  50 * time.Millisecond,
	}
	for ref, path := range manifests {
		s.manifests[ref] = filepath.Clean(path)
	}
	if err := WithFormatConstraint(DefaultFormatConstraint)(s); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func compileManifestSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(manifestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(manifestSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema: %w", err)
	}
	schema, err := c.Compile(manifestSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	return schema, nil
}

type manifestResult struct {
	objects []scene.Object
	err     error
}

// SwitchScene implements transition.Switcher
func (s *ManifestSwitcher) SwitchScene(_, target scene.Ref, onFinished transition.FinishFunc) transition.Task {
	return transition.Sequential(func(ctx context.Context, suspend func()) error {
		for range s.unloadFrames {
			suspend()
		}

		path, ok := s.manifests[target]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownScene, target)
		}

		// buffered so an abandoned task does not leak the worker
		results := make(chan manifestResult, 1)
		go func() {
			objects, err := s.load(ctx, path)
			results <- manifestResult{objects: objects, err: err}
		}()

		for {
			select {
			case res := <-results:
				if res.err != nil {
					return res.err
				}
				onFinished(res.objects)
				return nil
			default:
				suspend()
			}
		}
	})
}

func (s *ManifestSwitcher) load(ctx context.Context, path string) ([]scene.Object, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryDelay

	attempt := 0
	objects, err := backoff.Retry(ctx, func() ([]scene.Object, error) {
		attempt++
		data, err := s.readFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, backoff.Permanent(err)
			}
			slog.Debug("Manifest read failed", "path", path, "attempt", attempt, "error", err)
			return nil, err
		}

		objects, err := s.parse(data)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("manifest %s: %w", path, err))
		}
		return objects, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(s.maxAttempts))
	if err != nil {
		return nil, fmt.Errorf("failed to load scene manifest: %w", err)
	}
	return objects, nil
}

// readFile never waits for the lock; a held lock is a read failure and the
// retry policy in load decides whether to try again.
func (s *ManifestSwitcher) readFile(path string) ([]byte, error) {
	if s.lockFiles {
		fl := flock.New(path + ".lock")
		locked, err := fl.TryRLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock manifest %s: %w", path, err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrManifestLocked, path)
		}
		defer func() {
			if err := fl.Unlock(); err != nil {
				slog.Warn("Failed to unlock manifest", "path", path, "error", err)
			}
		}()
	}

	return os.ReadFile(path)
}

func (s *ManifestSwitcher) parse(data []byte) ([]scene.Object, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(std))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	formatVersion := gjson.GetBytes(std, "formatVersion").String()
	v, err := semver.NewVersion(formatVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid formatVersion %q: %w", formatVersion, err)
	}
	if !s.format.Check(v) {
		return nil, fmt.Errorf("unsupported formatVersion %s", v)
	}

	var objects []scene.Object
	var parseErr error
	seen := make(map[uuid.UUID]struct{})
	gjson.GetBytes(std, "objects").ForEach(func(_, value gjson.Result) bool {
		id, err := uuid.Parse(value.Get("id").String())
		if err != nil {
			parseErr = fmt.Errorf("invalid object id %q: %w", value.Get("id").String(), err)
			return false
		}
		if _, dup := seen[id]; dup {
			parseErr = fmt.Errorf("duplicate object id %s", id)
			return false
		}
		seen[id] = struct{}{}
		objects = append(objects, &Object{
			ID:   id,
			Name: value.Get("name").String(),
			Kind: value.Get("kind").String(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return objects, nil
}
