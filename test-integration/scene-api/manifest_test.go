package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/toolhive-scene-server/internal/status"
	"github.com/stacklok/toolhive-scene-server/test-integration/scene-api/helpers"
)

var _ = Describe("Manifest Loader Integration", Label("manifest"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	BeforeEach(func() {
		tempDir = createTempDir("manifest-test-")
	})

	AfterEach(func() {
		if serverHelper != nil {
			_ = serverHelper.StopServer()
		}
		cleanupTempDir(tempDir)
	})

	startWith := func(scenes []helpers.TestScene) {
		configFile := helpers.WriteConfigYAML(tempDir,
			helpers.LoaderOptions{Type: "manifest", UnloadFrames: 1, ReadAttempts: 2},
			[]helpers.TestPeer{{Name: "host", InitialScene: helpers.Scene(0), StartScene: helpers.Scene(1)}},
			scenes)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	It("should load scene objects from a manifest", func() {
		helpers.WriteManifest(tempDir, "lobby.json", "1.0.0", "lobby", []helpers.TestObject{spawn})
		helpers.WriteManifest(tempDir, "arena.json", "1.3.0", "arena", []helpers.TestObject{door, spawn})

		startWith([]helpers.TestScene{
			{Index: 0, Name: "lobby", Manifest: "lobby.json"},
			{Index: 1, Name: "arena", Manifest: "arena.json"},
		})

		st := serverHelper.WaitForPeer("host", 10*time.Second, func(st *status.TransitionStatus) bool {
			return st.Phase == status.PhaseComplete
		})
		Expect(st.ObjectCount).To(Equal(2))
		Expect(st.Ready).To(BeTrue())

		resp, err := serverHelper.GetObject("host", door.ID)
		Expect(err).NotTo(HaveOccurred())
		_ = resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("should fail the transition for an unsupported format version", func() {
		helpers.WriteManifest(tempDir, "lobby.json", "1.0.0", "lobby", nil)
		helpers.WriteManifest(tempDir, "arena.json", "2.0.0", "arena", []helpers.TestObject{door})

		startWith([]helpers.TestScene{
			{Index: 0, Name: "lobby", Manifest: "lobby.json"},
			{Index: 1, Name: "arena", Manifest: "arena.json"},
		})

		st := serverHelper.WaitForPeer("host", 10*time.Second, func(st *status.TransitionStatus) bool {
			return st.Phase == status.PhaseFailed
		})
		Expect(st.Message).To(ContainSubstring("2.0.0"))
		Expect(st.ObjectCount).To(BeZero())
	})

	It("should fail the transition when the manifest is missing", func() {
		startWith([]helpers.TestScene{
			{Index: 0, Name: "lobby", Manifest: "lobby.json"},
			{Index: 1, Name: "arena", Manifest: filepath.Join(tempDir, "missing.json")},
		})

		st := serverHelper.WaitForPeer("host", 10*time.Second, func(st *status.TransitionStatus) bool {
			return st.Phase == status.PhaseFailed
		})
		Expect(st.Message).NotTo(BeEmpty())
		_, err := os.Stat(filepath.Join(tempDir, "missing.json"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
