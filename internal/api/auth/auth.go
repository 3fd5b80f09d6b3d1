package auth

import (
	dto "crash_backend/internal/api/dto/auth"
	"crash_backend/internal/converter"
	"crash_backend/internal/logger"
	"crash_backend/internal/middleware"
	"crash_backend/internal/repository"
	"crash_backend/internal/service"
	"crash_backend/pkg/req"
	"crash_backend/pkg/resp"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type HandlerDeps struct {
	Serv service.AuthService
	Log  *zap.Logger
}

type Handler struct {
	serv service.AuthService
	log  *zap.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv, log: logger.OrNop(deps.Log)}
}

// Guest creates a wallet with the starting balance and returns its access token.
// The body is optional.
func (h *Handler) Guest(w http.ResponseWriter, r *http.Request) {
	body, err := req.Decode[dto.GuestRequest](r.Body)
	if err != nil && !errors.Is(err, req.ErrEmptyBody) {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	data, err := h.serv.Guest(r.Context(), body.Name)
	if err != nil {
		h.log.Error("guest failed", zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "guest registration failed")
		return
	}

	resp.WriteJSONResponse(w, http.StatusCreated, converter.ToGuestResponse(*data))
}

// Me - the wallet behind the bearer token
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r.Context())
	if claims == nil {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.serv.Me(r.Context(), claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			resp.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error("me failed", zap.String("user_id", claims.ID), zap.Error(err))
		resp.WriteError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToUserDTO(user))
}
