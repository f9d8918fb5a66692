package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"yideshare/internal/domain"
	"yideshare/internal/middleware"
	"yideshare/internal/service"

	"github.com/go-chi/chi/v5"
)

// RideHandler exposes ride CRUD and bookmark endpoints. All routes sit behind
// the token auth middleware; the acting netid always comes from the session,
// never from the request body.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new ride handler
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
	}
}

// RideResponse is the envelope for ride and bookmark endpoints.
type RideResponse struct {
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Message      string         `json:"message,omitempty"`
	Ride         *domain.Ride   `json:"ride,omitempty"`
	Rides        []*domain.Ride `json:"rides,omitempty"`
	IsBookmarked *bool          `json:"isBookmarked,omitempty"`
}

func writeRideJSON(w http.ResponseWriter, status int, resp RideResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (h *RideHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeRideJSON(w, http.StatusBadRequest, RideResponse{
			Success: false,
			Error:   "invalid_input",
			Message: "Driver, from, to, date, and time are required",
		})
	case errors.Is(err, domain.ErrRideNotFound):
		writeRideJSON(w, http.StatusNotFound, RideResponse{
			Success: false,
			Error:   "ride_not_found",
			Message: "The specified ride does not exist",
		})
	case errors.Is(err, domain.ErrNotRideOwner):
		writeRideJSON(w, http.StatusForbidden, RideResponse{
			Success: false,
			Error:   "not_owner",
			Message: "Only the ride owner may modify this listing",
		})
	default:
		writeRideJSON(w, http.StatusInternalServerError, RideResponse{
			Success: false,
			Error:   "server_error",
			Message: err.Error(),
		})
	}
}

// Search handles GET /api/rides with optional from/to/date filters.
func (h *RideHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := domain.RideFilter{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
		Date: r.URL.Query().Get("date"),
	}

	rides, err := h.rideService.Search(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, Rides: rides})
}

// Create handles POST /api/rides.
func (h *RideHandler) Create(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	var ride domain.Ride
	if err := json.NewDecoder(r.Body).Decode(&ride); err != nil {
		writeRideJSON(w, http.StatusBadRequest, RideResponse{Success: false, Error: "invalid_body"})
		return
	}

	created, err := h.rideService.Create(r.Context(), netid, &ride)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, Ride: created})
}

// ListMine handles GET /api/rides/user: the caller's own listings.
func (h *RideHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	rides, err := h.rideService.ListByOwner(r.Context(), netid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, Rides: rides})
}

// Update handles PUT /api/rides/{id}.
func (h *RideHandler) Update(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	var ride domain.Ride
	if err := json.NewDecoder(r.Body).Decode(&ride); err != nil {
		writeRideJSON(w, http.StatusBadRequest, RideResponse{Success: false, Error: "invalid_body"})
		return
	}
	ride.ID = chi.URLParam(r, "id")

	updated, err := h.rideService.Update(r.Context(), netid, &ride)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, Ride: updated})
}

// Delete handles DELETE /api/rides/{id}.
func (h *RideHandler) Delete(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	if err := h.rideService.Delete(r.Context(), netid, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true})
}

// ListBookmarks handles GET /api/bookmarks: the caller's bookmarked rides.
func (h *RideHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	rides, err := h.rideService.ListBookmarks(r.Context(), netid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, Rides: rides})
}

// ToggleBookmark handles POST /api/bookmarks/toggle with body {rideId}.
func (h *RideHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	var req struct {
		RideID string `json:"rideId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RideID == "" {
		writeRideJSON(w, http.StatusBadRequest, RideResponse{Success: false, Error: "invalid_body", Message: "Ride ID is required"})
		return
	}

	bookmarked, err := h.rideService.ToggleBookmark(r.Context(), netid, req.RideID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	message := "Bookmark removed"
	if bookmarked {
		message = "Ride bookmarked"
	}
	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, IsBookmarked: &bookmarked, Message: message})
}

// CheckBookmark handles GET /api/bookmarks/check?rideId=.
func (h *RideHandler) CheckBookmark(w http.ResponseWriter, r *http.Request) {
	netid, ok := middleware.GetNetID(r.Context())
	if !ok {
		writeRideJSON(w, http.StatusUnauthorized, RideResponse{Success: false, Error: "not_authenticated"})
		return
	}

	rideID := r.URL.Query().Get("rideId")
	if rideID == "" {
		writeRideJSON(w, http.StatusBadRequest, RideResponse{Success: false, Error: "invalid_body", Message: "Ride ID is required"})
		return
	}

	bookmarked, err := h.rideService.IsBookmarked(r.Context(), netid, rideID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeRideJSON(w, http.StatusOK, RideResponse{Success: true, IsBookmarked: &bookmarked})
}
