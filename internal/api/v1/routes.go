// Package v1 provides the REST API handlers for scene peers.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stacklok/toolhive-scene-server/internal/api/common"
	"github.com/stacklok/toolhive-scene-server/internal/scene"
	"github.com/stacklok/toolhive-scene-server/internal/service"
	"github.com/stacklok/toolhive-scene-server/internal/status"
)

// ListPeersResponse is the body of GET /v1/peers
type ListPeersResponse struct {
	Peers []status.TransitionStatus `json:"peers"`
}

// SetSceneRequest is the body of PUT /v1/peers/{peer}/scene
type SetSceneRequest struct {
	Scene *int `json:"scene"`
}

// SetSceneResponse acknowledges a scene change request
type SetSceneResponse struct {
	Peer  string    `json:"peer"`
	Scene scene.Ref `json:"scene"`
}

// ObjectResponse is the body of GET /v1/peers/{peer}/objects/{id}
type ObjectResponse struct {
	Peer   string       `json:"peer"`
	ID     uuid.UUID    `json:"id"`
	Object scene.Object `json:"object"`
}

// Routes holds the peer handlers
type Routes struct {
	service service.SceneService
}

// Router creates the router for peer endpoints
func Router(svc service.SceneService) http.Handler {
	routes := &Routes{service: svc}

	r := chi.NewRouter()
	r.Get("/peers", routes.listPeers)
	r.Route("/peers/{peer}", func(r chi.Router) {
		r.Get("/", routes.getPeer)
		r.Put("/scene", routes.setScene)
		r.Get("/objects/{id}", routes.getObject)
	})

	return r
}

func (rr *Routes) listPeers(w http.ResponseWriter, r *http.Request) {
	peers, err := rr.service.ListPeers(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list peers", err)
		return
	}
	common.WriteJSONResponse(w, ListPeersResponse{Peers: peers}, http.StatusOK)
}

func (rr *Routes) getPeer(w http.ResponseWriter, r *http.Request) {
	name, err := common.URLParam(r, "peer")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := rr.service.GetPeer(r.Context(), name)
	if err != nil {
		writeServiceError(w, "Failed to get peer", err)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

func (rr *Routes) setScene(w http.ResponseWriter, r *http.Request) {
	name, err := common.URLParam(r, "peer")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req SetSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Scene == nil || *req.Scene < 0 {
		common.WriteErrorResponse(w, "scene must be a non-negative scene index", http.StatusBadRequest)
		return
	}

	ref := scene.FromIndex(*req.Scene)
	if err := rr.service.SetScene(r.Context(), name, ref); err != nil {
		writeServiceError(w, "Failed to set scene", err)
		return
	}

	slog.Info("Scene change requested", "peer", name, "scene", ref.String())
	common.WriteJSONResponse(w, SetSceneResponse{Peer: name, Scene: ref}, http.StatusAccepted)
}

func (rr *Routes) getObject(w http.ResponseWriter, r *http.Request) {
	name, err := common.URLParam(r, "peer")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	rawID, err := common.URLParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		common.WriteErrorResponse(w, fmt.Sprintf("invalid object id %q", rawID), http.StatusBadRequest)
		return
	}

	obj, err := rr.service.ResolveObject(r.Context(), name, id)
	if err != nil {
		writeServiceError(w, "Failed to resolve object", err)
		return
	}
	common.WriteJSONResponse(w, ObjectResponse{Peer: name, ID: id, Object: obj}, http.StatusOK)
}

func writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, service.ErrPeerNotFound), errors.Is(err, service.ErrObjectNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrUnknownScene):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error(message, "error", err)
		common.WriteErrorResponse(w, message, http.StatusServiceUnavailable)
	}
}
