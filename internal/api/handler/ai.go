package handler

import (
	"errors"
	"net/http"

	"github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/api/response"
	"github.com/ethdomperin2018/ai-assist/internal/domain"
	"github.com/ethdomperin2018/ai-assist/internal/llm"
	"github.com/ethdomperin2018/ai-assist/internal/service"
)

// AIHandler exposes plan analysis, contract drafting and chat replies
type AIHandler struct {
	aiService *service.AIService
	repo      domain.Store
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *service.AIService, repo domain.Store) *AIHandler {
	return &AIHandler{aiService: aiService, repo: repo}
}

// AnalyzeRequestBody is the body of a plan analysis call
type AnalyzeRequestBody struct {
	RequestDescription string `json:"requestDescription" validate:"required,max=5000"`
	TaskType           string `json:"taskType" validate:"max=50"`
}

// DraftContractBody is the body of a contract drafting call
type DraftContractBody struct {
	RequestID int64  `json:"requestId" validate:"required"`
	Details   string `json:"details" validate:"required,max=10000"`
}

// ChatResponseBody is the body of a chat reply call. Context defaults to
// the request description.
type ChatResponseBody struct {
	RequestID int64  `json:"requestId" validate:"required"`
	Context   string `json:"context" validate:"max=5000"`
}

// AnalyzeRequest handles turning a description into a step plan
func (h *AIHandler) AnalyzeRequest(w http.ResponseWriter, r *http.Request) {
	var input AnalyzeRequestBody
	if !decodeJSON(w, r, &input) {
		return
	}

	analysis, err := h.aiService.AnalyzeRequestFor(r.Context(), input.RequestDescription, input.TaskType)
	if err != nil {
		writeAIError(w, err)
		return
	}

	response.OK(w, analysis)
}

// DraftContract handles drafting a service contract for a request
func (h *AIHandler) DraftContract(w http.ResponseWriter, r *http.Request) {
	var input DraftContractBody
	if !decodeJSON(w, r, &input) {
		return
	}

	if _, ok := h.authorizedRequest(w, r, input.RequestID); !ok {
		return
	}

	draft, err := h.aiService.DraftContract(r.Context(), input.Details)
	if err != nil {
		writeAIError(w, err)
		return
	}

	response.OK(w, draft)
}

// ChatResponse handles generating the assistant's next reply in a request's chat
func (h *AIHandler) ChatResponse(w http.ResponseWriter, r *http.Request) {
	var input ChatResponseBody
	if !decodeJSON(w, r, &input) {
		return
	}

	request, ok := h.authorizedRequest(w, r, input.RequestID)
	if !ok {
		return
	}

	messages, err := h.repo.GetMessagesByRequestID(r.Context(), request.ID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	conversation := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		if m.Type == domain.MessageTypeChat {
			conversation = append(conversation, m)
		}
	}

	requestContext := input.Context
	if requestContext == "" {
		requestContext = request.Description
	}

	reply, err := h.aiService.GenerateResponse(r.Context(), conversation, requestContext)
	if err != nil {
		writeAIError(w, err)
		return
	}

	response.OK(w, map[string]string{"response": reply})
}

// authorizedRequest loads a request the caller may act on: staff may use
// any request, clients only their own. It writes the error response itself.
func (h *AIHandler) authorizedRequest(w http.ResponseWriter, r *http.Request, requestID int64) (*domain.Request, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return nil, false
	}

	request, err := h.repo.GetRequest(r.Context(), requestID)
	if err != nil {
		response.InternalError(w, err)
		return nil, false
	}
	if request == nil {
		response.NotFound(w, "request not found")
		return nil, false
	}
	if !claims.IsStaff() && request.UserID != claims.UserID {
		response.Forbidden(w, "not authorized for this request")
		return nil, false
	}

	return request, true
}

func writeAIError(w http.ResponseWriter, err error) {
	if errors.Is(err, llm.ErrNoProvider) {
		response.Unavailable(w, "no AI provider is configured")
		return
	}
	response.InternalError(w, err)
}
