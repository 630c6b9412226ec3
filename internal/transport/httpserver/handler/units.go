package handler

import (
	"errors"
	"net/http"

	unitsdomain "opsboard/internal/domain/units"
	"opsboard/internal/transport/httpserver/middleware"
)

type createUnitRequest struct {
	Name string `json:"name"`
}

type joinUnitRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) ListUnits(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	memberships, err := h.Units.ListForUser(r.Context(), user.ID)
	if err != nil {
		h.logger(r).InternalError("units.list: list failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	items := make([]unitResponse, 0, len(memberships))
	for _, membership := range memberships {
		items = append(items, toUnitResponse(membership.Unit, membership.Role))
	}
	writeList(w, items)
}

func (h *Handlers) CreateUnit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}

	unit, err := h.Units.Create(r.Context(), user.ID, req.Name)
	if err != nil {
		if errors.Is(err, unitsdomain.ErrNameRequired) {
			writeInvalid(w, err.Error())
			return
		}
		h.logger(r).InternalError("units.create: create failed", err, "user_id", user.ID)
		writeInternalError(w)
		return
	}

	h.logger(r).Info("units.create: unit created", "user_id", user.ID, "unit_id", unit.ID)
	writeJSON(w, http.StatusCreated, toUnitResponse(*unit, unitsdomain.RoleOwner))
}

func (h *Handlers) JoinUnit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req joinUnitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, "invalid json")
		return
	}

	unit, err := h.Units.Join(r.Context(), user.ID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, unitsdomain.ErrCodeRequired):
			writeInvalid(w, err.Error())
		case errors.Is(err, unitsdomain.ErrUnitCodeNotFound):
			h.logger(r).BusinessError("units.join: code not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "unit_code_not_found", "unit code not found")
		case errors.Is(err, unitsdomain.ErrAlreadyMember):
			h.logger(r).BusinessError("units.join: already member", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "already_member", "already a member of the unit")
		default:
			h.logger(r).InternalError("units.join: join failed", err, "user_id", user.ID)
			writeInternalError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, toUnitResponse(*unit, unitsdomain.RoleMember))
}

func (h *Handlers) ListUnitMembers(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	member, ok := middleware.UnitFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "unit_not_found", "unit not found")
		return
	}

	members, err := h.Units.ListMembers(r.Context(), user.ID, member.UnitID)
	if err != nil {
		h.logger(r).InternalError("units.members: list failed", err, "user_id", user.ID, "unit_id", member.UnitID)
		writeInternalError(w)
		return
	}

	userIDs := make([]string, 0, len(members))
	for _, item := range members {
		userIDs = append(userIDs, item.UserID)
	}
	profiles, err := h.Profiles.Lookup(r.Context(), userIDs)
	if err != nil {
		h.logger(r).InternalError("units.members: load profiles failed", err, "unit_id", member.UnitID)
		writeInternalError(w)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for _, item := range members {
		profile := profiles[item.UserID]
		items = append(items, memberResponse{
			UserID:   item.UserID,
			Role:     item.Role,
			JoinedAt: item.JoinedAt,
			Email:    profile.Email,
			Name:     profile.Name,
		})
	}
	writeList(w, items)
}
