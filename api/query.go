package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/dispenser"
)

func (a *API) queryHandler(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if len(query) == 0 {
			plainText(w, r, http.StatusBadRequest, "Error: Missing query parameters.")
			return
		}
		if !query.Has("slot") {
			plainText(w, r, http.StatusBadRequest, "Error: Missing 'slot' parameter.")
			return
		}

		raw := query.Get("slot")
		slot, err := strconv.Atoi(raw)
		if err != nil {
			plainText(w, r, http.StatusBadRequest, fmt.Sprintf("Error: Invalid slot number (%s)", raw))
			return
		}

		result, err := op(r.Context(), pilldispenser.Slot(slot))
		plainText(w, r, statusFor(err), textMessage(result, err))
	}
}

func textMessage(result dispenser.Result, err error) string {
	switch {
	case err == nil:
		return result.Message()
	case errors.Is(err, dispenser.ErrInvalidSlot):
		return fmt.Sprintf("Error: Invalid slot number (%d)", result.Slot)
	case errors.Is(err, dispenser.ErrAlreadyFilled):
		return "Already Added: " + result.Label
	case errors.Is(err, dispenser.ErrNotFound):
		return "Not Found: " + result.Label
	case errors.Is(err, dispenser.ErrNotScheduled):
		return fmt.Sprintf("Error: %s is not scheduled/filled.", result.Label)
	case errors.Is(err, dispenser.ErrBusy):
		return "Error: Server busy, please try again."
	default:
		return "Error: " + err.Error()
	}
}

func plainText(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.PlainText(w, r, msg)
}
