package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

const detailNoActiveAccount = "指定された認証情報に一致するアクティブなアカウントがありません。"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Handler{
		logger:    logger,
		service:   service,
		validator: v,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Get("/info", h.handleInfo)
}

type loginRequest struct {
	Email    *string `json:"email" validate:"required,notblank,max=254"`
	Password *string `json:"password" validate:"required,notblank,max=128"`
}

type loginResponse struct {
	Access string `json:"access"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		req.Email = &trimmed
	}
	if fieldErrs := h.validateLogin(req); !fieldErrs.Empty() {
		httpx.RespondError(w, fieldErrs)
		return
	}

	token, err := h.service.Login(r.Context(), *req.Email, *req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Detail(w, http.StatusUnauthorized, detailNoActiveAccount)
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Access: token})
}

func (h *Handler) validateLogin(req loginRequest) httpx.FieldErrors {
	fieldErrs := httpx.FieldErrors{}
	err := h.validator.Struct(req)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fieldErrs
	}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fieldErrs.Add(name, "この項目は必須です。")
		case "notblank":
			fieldErrs.Add(name, "この項目は空にできません。")
		case "max":
			fieldErrs.Add(name, fmt.Sprintf("この項目が%s文字より長くならないようにしてください。", fe.Param()))
		default:
			fieldErrs.Add(name, fe.Error())
		}
	}
	return fieldErrs
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.Message(w, http.StatusOK, "user not authenticated")
		return
	}
	httpx.JSON(w, http.StatusOK, user.Profile())
}
