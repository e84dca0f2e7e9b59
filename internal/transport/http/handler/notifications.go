package handler

import (
	"encoding/json"
	"net/http"

	"github.com/endpoint-nf-store/internal/application/notification"
	"github.com/endpoint-nf-store/internal/domain"
	appmiddleware "github.com/endpoint-nf-store/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NotificationHandler handles endpoint notification and application endpoints.
type NotificationHandler struct {
	svc notification.Service
	log *zap.Logger
}

func NewNotificationHandler(svc notification.Service, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log.Named("http")}
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var dto domain.EndpointNotificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	n, err := h.svc.Send(r.Context(), dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n.ToDTO())
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n.ToDTO())
}

func (h *NotificationHandler) ListByEndpoint(w http.ResponseWriter, r *http.Request) {
	kh, ok := keyHashParam(w, r)
	if !ok {
		return
	}
	notifications, err := h.svc.ListByEndpoint(r.Context(), kh)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	env := NotificationsEnvelope{Count: len(notifications), Data: make([]domain.EndpointNotificationDTO, 0, len(notifications))}
	for i := range notifications {
		env.Data = append(env.Data, notifications[i].ToDTO())
	}
	writeJSON(w, http.StatusOK, env)
}

func (h *NotificationHandler) DeleteByEndpoint(w http.ResponseWriter, r *http.Request) {
	kh, ok := keyHashParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteByEndpoint(r.Context(), kh); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Endpoint notifications deleted", zap.Stringer("key_hash", kh), zap.String("caller", caller(r)))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "endpoint notifications deleted"})
}

func (h *NotificationHandler) DeleteByApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteByApplication(r.Context(), chi.URLParam(r, "appID")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Application notifications deleted", zap.String("app_id", chi.URLParam(r, "appID")), zap.String("caller", caller(r)))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "application notifications deleted"})
}

func (h *NotificationHandler) RegisterEndpoint(w http.ResponseWriter, r *http.Request) {
	kh, ok := keyHashParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.RegisterEndpoint(r.Context(), chi.URLParam(r, "appID"), kh); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Endpoint registered", zap.String("app_id", chi.URLParam(r, "appID")), zap.Stringer("key_hash", kh), zap.String("caller", caller(r)))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "endpoint registered"})
}

func (h *NotificationHandler) UnregisterEndpoint(w http.ResponseWriter, r *http.Request) {
	kh, ok := keyHashParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.UnregisterEndpoint(r.Context(), chi.URLParam(r, "appID"), kh); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("Endpoint unregistered", zap.String("app_id", chi.URLParam(r, "appID")), zap.Stringer("key_hash", kh), zap.String("caller", caller(r)))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "endpoint unregistered"})
}

func (h *NotificationHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Warn("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	httpError(w, err)
}

// caller is the JWT subject of the request, or "anonymous".
func caller(r *http.Request) string {
	if claims, ok := appmiddleware.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}

func keyHashParam(w http.ResponseWriter, r *http.Request) (domain.KeyHash, bool) {
	kh, err := domain.ParseKeyHash(chi.URLParam(r, "keyHash"))
	if err != nil {
		httpError(w, err)
		return nil, false
	}
	return kh, true
}
