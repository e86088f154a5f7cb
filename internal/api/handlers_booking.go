package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Durgesh2022/yoga-app/internal/booking"
)

func decodeOrReject[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json")
		return nil, false
	}
	return &v, true
}

// created writes the shared response shape for the four booking creates and
// maps validation failures to 400 with the message.
func created[T any](w http.ResponseWriter, r *http.Request, v *T, err error) {
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			writeDomainError(w, r, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{
		"success": true,
		"booking": v,
	})
}

func handleCreateBooking(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[booking.Booking](w, r)
		if !ok {
			return
		}
		b, err := deps.Bookings.CreateBooking(r.Context(), req)
		created(w, r, b, err)
	}
}

func handleGetBooking(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := deps.Bookings.GetBooking(r.Context(), chi.URLParam(r, "booking_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, b)
	}
}

func handleListUserBookings(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := deps.Bookings.ListUserBookings(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"bookings": list})
	}
}

func handleYogaClassBooking(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[booking.YogaClassBooking](w, r)
		if !ok {
			return
		}
		b, err := deps.Bookings.CreateYogaClassBooking(r.Context(), req)
		created(w, r, b, err)
	}
}

func handleYogaPackagePurchase(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[booking.YogaPackagePurchase](w, r)
		if !ok {
			return
		}
		p, err := deps.Bookings.CreateYogaPackagePurchase(r.Context(), req)
		created(w, r, p, err)
	}
}

func handleYogaConsultation(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeOrReject[booking.YogaConsultation](w, r)
		if !ok {
			return
		}
		c, err := deps.Bookings.CreateYogaConsultation(r.Context(), req)
		created(w, r, c, err)
	}
}

func handleYogaActivity(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activity, err := deps.Bookings.ListUserYogaActivity(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, activity)
	}
}
