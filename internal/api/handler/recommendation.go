package handler

import (
	"net/http"

	"github.com/ethdomperin2018/ai-assist/internal/api/middleware"
	"github.com/ethdomperin2018/ai-assist/internal/api/response"
	"github.com/ethdomperin2018/ai-assist/internal/service"
)

// RecommendationHandler handles recommendation endpoints
type RecommendationHandler struct {
	recommendationService *service.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendationService *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// StepsRequest is the body of a step recommendation call
type StepsRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
}

// Steps handles recommending steps for a new request description
func (h *RecommendationHandler) Steps(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input StepsRequest
	if !decodeJSON(w, r, &input) {
		return
	}

	recommendations, err := h.recommendationService.GetRecommendedSteps(r.Context(), input.Description, userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, recommendations)
}

// Resources handles recommending people and providers for a request
func (h *RecommendationHandler) Resources(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	recommendations, err := h.recommendationService.GetResourceRecommendations(r.Context(), requestID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, recommendations)
}

// Optimizations handles recommending plan improvements for a request
func (h *RecommendationHandler) Optimizations(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	recommendations, err := h.recommendationService.GetOptimizationRecommendations(r.Context(), requestID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.OK(w, recommendations)
}
