package handler

import (
	"errors"
	"net/http"

	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/service"
)

// ResetHandler handles HTTP requests for the code-based password-recovery
// flow.
type ResetHandler struct {
	service *service.ResetService
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(svc *service.ResetService) *ResetHandler {
	return &ResetHandler{service: svc}
}

// HandleForgotPassword handles POST /api/forgot-password requests.
func (h *ResetHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Forgot(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailRequired) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleVerifyResetCode handles POST /api/verify-reset-code requests.
func (h *ResetHandler) HandleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyResetCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAndCodeRequired),
			errors.Is(err, service.ErrCodeNotFound),
			errors.Is(err, service.ErrCodeExpired),
			errors.Is(err, service.ErrCodeMismatch):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleResetPassword handles POST /api/reset-password requests.
func (h *ResetHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.service.Reset(r.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetFieldsRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrInvalidResetToken):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "password reset successfully"})
}
