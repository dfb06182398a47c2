package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/calvinmclean/pilldispenser"
	"github.com/calvinmclean/pilldispenser/dispenser"
)

// maxBodyBytes is far above any valid dose request
const maxBodyBytes = 1 << 10

type doseRequest struct {
	Day  string `json:"day"`
	Dose int    `json:"dose"`
}

type doseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Slot    *int   `json:"slot,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type filledDose struct {
	Day  string `json:"day"`
	Dose int    `json:"dose"`
}

type filledDosesResponse struct {
	FilledDoses []filledDose `json:"filled_doses"`
}

type slotInfo struct {
	Slot  int    `json:"slot"`
	Day   string `json:"day"`
	Dose  int    `json:"dose"`
	Angle int    `json:"angle"`
	Label string `json:"label"`
}

func (a *API) jsonHandler(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req doseRequest
		err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req)
		if err != nil {
			jsonResponse(w, r, http.StatusBadRequest, doseResponse{Message: "Invalid JSON"})
			return
		}

		if req.Day == "" || req.Dose == 0 {
			jsonResponse(w, r, http.StatusBadRequest, doseResponse{Message: "Missing day or dose"})
			return
		}

		day, err := pilldispenser.ParseDay(req.Day)
		if err != nil {
			jsonResponse(w, r, http.StatusBadRequest, doseResponse{Message: "Invalid day or dose"})
			return
		}

		slot, err := a.svc.SlotFor(day, pilldispenser.Dose(req.Dose))
		if err != nil {
			jsonResponse(w, r, http.StatusBadRequest, doseResponse{Message: "Invalid day or dose"})
			return
		}

		result, err := op(r.Context(), slot)

		resp := doseResponse{Success: err == nil, Message: jsonMessage(result, err)}
		if err == nil {
			s := int(result.Slot)
			resp.Slot = &s
		}
		if result.Warning != nil {
			resp.Warning = "schedule not saved: " + result.Warning.Error()
		}
		jsonResponse(w, r, statusFor(err), resp)
	}
}

func jsonMessage(result dispenser.Result, err error) string {
	switch {
	case err == nil:
		return result.Message()
	case errors.Is(err, dispenser.ErrAlreadyFilled):
		return "Slot already filled"
	case errors.Is(err, dispenser.ErrNotFound):
		return "Slot already empty"
	case errors.Is(err, dispenser.ErrNotScheduled):
		return result.Label + " is not scheduled"
	case errors.Is(err, dispenser.ErrBusy):
		return "Server busy, please try again"
	default:
		return err.Error()
	}
}

func jsonResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// getFilledDoses returns a flat array of slot indices, or the day/dose objects with ?format=detailed
func (a *API) getFilledDoses(w http.ResponseWriter, r *http.Request) {
	detailed := r.URL.Query().Get("format") == "detailed"

	doses, err := a.svc.Doses(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if isBusy(err) {
			status = http.StatusServiceUnavailable
		}
		a.logger.Warn().Err(err).Msg("error listing filled doses")

		if detailed {
			jsonResponse(w, r, status, filledDosesResponse{FilledDoses: []filledDose{}})
			return
		}
		jsonResponse(w, r, status, []int{})
		return
	}

	if detailed {
		resp := filledDosesResponse{FilledDoses: make([]filledDose, 0, len(doses))}
		for _, d := range doses {
			resp.FilledDoses = append(resp.FilledDoses, filledDose{Day: d.Day.String(), Dose: int(d.Dose)})
		}
		jsonResponse(w, r, http.StatusOK, resp)
		return
	}

	slots := make([]int, 0, len(doses))
	for _, d := range doses {
		slots = append(slots, int(d.Slot))
	}
	jsonResponse(w, r, http.StatusOK, slots)
}

// getSlots describes the layout so clients do not need to hardcode it
func (a *API) getSlots(w http.ResponseWriter, r *http.Request) {
	layout := a.svc.Layout()
	positions := layout.Positions()

	out := make([]slotInfo, 0, layout.NumSlots())
	for i := range layout.NumSlots() {
		slot := pilldispenser.Slot(i)
		day, dose, _ := layout.Describe(slot)
		out = append(out, slotInfo{
			Slot:  i,
			Day:   day.String(),
			Dose:  int(dose),
			Angle: positions[i],
			Label: layout.Label(slot),
		})
	}
	jsonResponse(w, r, http.StatusOK, out)
}
