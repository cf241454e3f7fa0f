package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

const timeFormat = time.RFC3339

// Spaces

type createSpaceRequest struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Priority int32  `json:"priority"`
}

func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req createSpaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	space := &domain.Space{ID: req.ID, Location: req.Location, Priority: req.Priority}
	if err := h.spaces.CreateSpace(r.Context(), space); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, space)
}

func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	var (
		spaces []domain.Space
		err    error
	)
	if r.URL.Query().Get("available") == "true" {
		spaces, err = h.spaces.ListAvailableSpaces(r.Context())
	} else {
		spaces, err = h.spaces.ListSpaces(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(spaces))
}

func (h *Handler) GetSpace(w http.ResponseWriter, r *http.Request) {
	space, err := h.spaces.GetSpace(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, space)
}

// Users

type userRequest struct {
	ID            string          `json:"id"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	Email         string          `json:"email"`
	PhoneNumber   string          `json:"phone_number"`
	VehicleNumber string          `json:"vehicle_number"`
	Type          domain.UserType `json:"type"`
}

func (req userRequest) toDomain() *domain.User {
	return &domain.User{
		ID:            req.ID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		VehicleNumber: req.VehicleNumber,
		Type:          req.Type,
	}
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user := req.toDomain()
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	if req.ID != "" && domain.NormalizeID(req.ID) != domain.NormalizeID(id) {
		writeError(w, r, fmt.Errorf("body id %q does not match path: %w", req.ID, domain.ErrInvalidInput))
		return
	}
	req.ID = id
	user, err := h.users.UpdateUser(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.DeactivateUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) ReactivateUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.ReactivateUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.billing.GetPaymentSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Reservations

type bookRequest struct {
	UserID    string    `json:"user_id"`
	SpaceID   string    `json:"space_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *Handler) BookReservation(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.reservations.BookReservation(r.Context(), req.UserID, req.SpaceID, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	status := domain.ReservationStatus(r.URL.Query().Get("status"))
	list, err := h.reservations.ListReservations(r.Context(), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.reservations.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	result, err := h.reservations.ReleaseReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Billing

func (h *Handler) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.billing.ListPendingPayments(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	payment, err := h.billing.MarkPaid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) ListOccupancyLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.billing.ListOccupancyLog(r.Context(), repository.OccupancyFilter{
		UserID:  q.Get("user_id"),
		SpaceID: q.Get("space_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
