package integration

import (
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/toolhive-scene-server/internal/status"
	"github.com/stacklok/toolhive-scene-server/test-integration/scene-api/helpers"
)

var (
	spawn = helpers.TestObject{ID: "5b8a4d6e-0f5d-4c39-9a8e-0f1c8e7b2a11", Name: "spawn", Kind: "anchor"}
	door  = helpers.TestObject{ID: "0c7e2f9a-3b41-4e55-8d2a-6f9b1c0d4e22", Name: "door", Kind: "prop"}
)

var _ = Describe("Static Loader Integration", Label("static"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	start := func(loader helpers.LoaderOptions, peers []helpers.TestPeer, scenes []helpers.TestScene) {
		configFile := helpers.WriteConfigYAML(tempDir, loader, peers, scenes)

		var err error
		serverHelper, err = helpers.NewServerTestHelper(ctx, configFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(serverHelper.StartServer()).To(Succeed())
		DeferCleanup(func() {
			Expect(serverHelper.StopServer()).To(Succeed())
		})
		serverHelper.WaitForServerReady(10 * time.Second)
	}

	scenes := []helpers.TestScene{
		{Index: 0, Name: "lobby", Objects: []helpers.TestObject{spawn}},
		{Index: 1, Name: "arena", Objects: []helpers.TestObject{door}},
		{Index: 2, Name: "broken", Fail: "assets missing"},
	}

	BeforeEach(func() {
		tempDir = createTempDir("static-test-")
	})

	AfterEach(func() {
		cleanupTempDir(tempDir)
	})

	Context("Switching scenes", func() {
		It("should publish the new scene's objects once the switch completes", func() {
			start(helpers.LoaderOptions{Type: "static", UnloadFrames: 1, LoadFrames: 3},
				[]helpers.TestPeer{{Name: "host", InitialScene: helpers.Scene(0)}}, scenes)

			st := serverHelper.WaitForPeer("host", 5*time.Second, func(st *status.TransitionStatus) bool {
				return st.Ready
			})
			Expect(st.Phase).To(Equal(status.PhaseIdle))

			resp, err := serverHelper.SetScene("host", 1)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			st = serverHelper.WaitForPeer("host", 5*time.Second, func(st *status.TransitionStatus) bool {
				return st.Phase == status.PhaseComplete && st.Ready
			})
			Expect(st.ActiveScene.Index()).To(Equal(1))
			Expect(st.ObjectCount).To(Equal(1))

			resp, err = serverHelper.GetObject("host", door.ID)
			Expect(err).NotTo(HaveOccurred())
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(ContainSubstring(`"door"`))
		})

		It("should keep the previous objects when a scene fails to load", func() {
			start(helpers.LoaderOptions{Type: "static"},
				[]helpers.TestPeer{{Name: "host", InitialScene: helpers.Scene(0), StartScene: helpers.Scene(1)}}, scenes)

			serverHelper.WaitForPeer("host", 5*time.Second, func(st *status.TransitionStatus) bool {
				return st.Phase == status.PhaseComplete
			})

			resp, err := serverHelper.SetScene("host", 2)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()

			st := serverHelper.WaitForPeer("host", 5*time.Second, func(st *status.TransitionStatus) bool {
				return st.Phase == status.PhaseFailed
			})
			Expect(st.Message).To(ContainSubstring("assets missing"))

			resp, err = serverHelper.GetObject("host", door.ID)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should reject scenes that are not configured", func() {
			start(helpers.LoaderOptions{Type: "static"},
				[]helpers.TestPeer{{Name: "host", InitialScene: helpers.Scene(0)}}, scenes)

			resp, err := serverHelper.SetScene("host", 7)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			resp, err = serverHelper.SetScene("nobody", 1)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("Several peers", func() {
		It("should bring every peer to its start scene", func() {
			peers := []helpers.TestPeer{
				{Name: "host", InitialScene: helpers.Scene(0), StartScene: helpers.Scene(1)},
				{Name: "client-a", StartScene: helpers.Scene(1)},
				{Name: "client-b", StartScene: helpers.Scene(0)},
			}
			start(helpers.LoaderOptions{Type: "static", UnloadFrames: 2, LoadFrames: 5}, peers, scenes)

			Eventually(func() int {
				resp, err := serverHelper.GetReadiness()
				if err != nil {
					return 0
				}
				_ = resp.Body.Close()
				return resp.StatusCode
			}, 10*time.Second, 20*time.Millisecond).Should(Equal(http.StatusOK))

			for _, p := range peers {
				st, err := serverHelper.GetPeer(p.Name)
				Expect(err).NotTo(HaveOccurred())
				Expect(st.ActiveScene.Index()).To(Equal(*p.StartScene))
				Expect(st.Phase).To(Equal(status.PhaseComplete))
				Expect(st.Attempt).To(BeNumerically("==", 1))
			}
		})
	})
})
