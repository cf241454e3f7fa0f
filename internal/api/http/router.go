package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"smartparking-backend/internal/security"
	"smartparking-backend/internal/service"
)

// Authenticator checks operator credentials and returns their roles.
type Authenticator interface {
	Authenticate(username, password string) ([]string, error)
}

type Handler struct {
	spaces       service.SpaceService
	users        service.UserService
	reservations service.ReservationService
	billing      service.BillingService
	tokens       security.TokenManager
	auth         Authenticator
	health       func() error
}

func NewHandler(
	spaces service.SpaceService,
	users service.UserService,
	reservations service.ReservationService,
	billing service.BillingService,
	tokens security.TokenManager,
	auth Authenticator,
	health func() error,
) *Handler {
	return &Handler{
		spaces:       spaces,
		users:        users,
		reservations: reservations,
		billing:      billing,
		tokens:       tokens,
		auth:         auth,
		health:       health,
	}
}

// NewRouter registers every route. Route security levels live in
// config.EndpointSecurityConfig.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recoveryMiddleware, requestIDMiddleware, loggingMiddleware)
	r.Use((&authMiddleware{tokenManager: h.tokens}).Middleware)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/token", h.IssueToken).Methods(http.MethodPost)

	api.HandleFunc("/spaces", h.ListSpaces).Methods(http.MethodGet)
	api.HandleFunc("/spaces", h.CreateSpace).Methods(http.MethodPost)
	api.HandleFunc("/spaces/{id}", h.GetSpace).Methods(http.MethodGet)

	api.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.UpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.DeleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/deactivate", h.DeactivateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/reactivate", h.ReactivateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/payments", h.GetPaymentSummary).Methods(http.MethodGet)

	api.HandleFunc("/reservations", h.BookReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations", h.ListReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", h.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}/release", h.ReleaseReservation).Methods(http.MethodPost)

	api.HandleFunc("/payments/pending", h.ListPendingPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/pay", h.MarkPaid).Methods(http.MethodPost)
	api.HandleFunc("/occupancy", h.ListOccupancyLog).Methods(http.MethodGet)

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(); err != nil {
			writeErrorStatus(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	roles, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		writeErrorStatus(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	token, expiresAt, err := h.tokens.GenerateAccessToken(req.Username, roles)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC().Format(timeFormat),
	})
}
