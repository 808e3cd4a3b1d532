package handler

import (
	"net/http"

	"github.com/ethdomperin2018/ai-assist/internal/api/response"
	"github.com/ethdomperin2018/ai-assist/internal/workspace"
)

// WorkspaceHandler exposes live workspace sessions
type WorkspaceHandler struct {
	coordinator *workspace.Coordinator
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(coordinator *workspace.Coordinator) *WorkspaceHandler {
	return &WorkspaceHandler{coordinator: coordinator}
}

// List handles listing every active workspace
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.coordinator.GetAllActiveWorkspaces())
}

// Get handles getting the live state of one request's workspace
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	state, found := h.coordinator.GetWorkspaceState(requestID)
	if !found {
		response.NotFound(w, "no active workspace for request")
		return
	}

	response.OK(w, state)
}
