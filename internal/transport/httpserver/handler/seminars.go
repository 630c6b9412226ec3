package handler

import (
	"errors"
	"net/http"
	"time"

	seminarsdomain "opsboard/internal/domain/seminars"
	"opsboard/internal/transport/httpserver/middleware"
)

type seminarRequest struct {
	Name     string  `json:"name"`
	StartsOn *string `json:"starts_on"`
	Location string  `json:"location"`
}

func (req seminarRequest) startsOn() (*time.Time, error) {
	if req.StartsOn == nil {
		return nil, nil
	}
	return parseDateParam(*req.StartsOn)
}

func (h *Handlers) ListSeminars(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())

	items, err := h.Seminars.List(r.Context(), unit.UnitID)
	if err != nil {
		h.logger(r).InternalError("seminars.list: list failed", err, "unit_id", unit.UnitID)
		writeInternalError(w)
		return
	}

	response := make([]seminarResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toSeminarResponse(item))
	}
	writeList(w, response)
}

func (h *Handlers) GetSeminar(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "seminar_not_found", "seminar not found")
		return
	}

	item, err := h.Seminars.Get(r.Context(), unit.UnitID, id)
	if err != nil {
		h.writeSeminarError(w, r, "seminars.get", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusOK, toSeminarResponse(*item))
}

func (h *Handlers) CreateSeminar(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())

	var req seminarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	startsOn, err := req.startsOn()
	if err != nil {
		writeInvalid(w, "starts_on must be YYYY-MM-DD")
		return
	}

	item, err := h.Seminars.Create(r.Context(), seminarsdomain.CreateInput{
		UnitID:   unit.UnitID,
		Name:     req.Name,
		StartsOn: startsOn,
		Location: req.Location,
	})
	if err != nil {
		h.writeSeminarError(w, r, "seminars.create", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusCreated, toSeminarResponse(*item))
}

func (h *Handlers) UpdateSeminar(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "seminar_not_found", "seminar not found")
		return
	}

	var req seminarRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}
	startsOn, err := req.startsOn()
	if err != nil {
		writeInvalid(w, "starts_on must be YYYY-MM-DD")
		return
	}

	item, err := h.Seminars.Update(r.Context(), seminarsdomain.UpdateInput{
		ID:       id,
		UnitID:   unit.UnitID,
		Name:     req.Name,
		StartsOn: startsOn,
		Location: req.Location,
	})
	if err != nil {
		h.writeSeminarError(w, r, "seminars.update", err, unit.UnitID)
		return
	}
	writeJSON(w, http.StatusOK, toSeminarResponse(*item))
}

func (h *Handlers) DeleteSeminar(w http.ResponseWriter, r *http.Request) {
	unit, _ := middleware.UnitFromContext(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "seminar_not_found", "seminar not found")
		return
	}

	if err := h.Seminars.Delete(r.Context(), unit.UnitID, id); err != nil {
		h.writeSeminarError(w, r, "seminars.delete", err, unit.UnitID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeSeminarError(w http.ResponseWriter, r *http.Request, op string, err error, unitID string) {
	switch {
	case errors.Is(err, seminarsdomain.ErrSeminarNotFound):
		writeError(w, http.StatusNotFound, "seminar_not_found", "seminar not found")
	case errors.Is(err, seminarsdomain.ErrNameTaken):
		h.logger(r).BusinessError(op+": name taken", err, "unit_id", unitID)
		writeError(w, http.StatusConflict, "seminar_name_taken", err.Error())
	case errors.Is(err, seminarsdomain.ErrNameRequired),
		errors.Is(err, seminarsdomain.ErrNameTooLong),
		errors.Is(err, seminarsdomain.ErrLocationTooLong):
		h.logger(r).BusinessError(op+": invalid input", err, "unit_id", unitID)
		writeInvalid(w, err.Error())
	default:
		h.logger(r).InternalError(op+": failed", err, "unit_id", unitID)
		writeInternalError(w)
	}
}
