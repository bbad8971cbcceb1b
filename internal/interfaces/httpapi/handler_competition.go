package httpapi

import (
	"net/http"

	"github.com/riskibarqy/bloodbowl-league/internal/usecase"
)

func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCompetition")
	defer span.End()

	var req createCompetitionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.competitionService.Create(ctx, usecase.CreateCompetitionInput{
		ID:                 req.ID,
		Name:               req.Name,
		CommissionerUserID: req.CommissionerUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create competition failed", "competition_id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, competitionToDTO(ctx, item))
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	item, err := h.competitionService.Get(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(ctx, item))
}

func (h *Handler) EnrollRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnrollRoster")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	var req enrollRosterRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.rosterService.Enroll(ctx, req.toInput(competitionID))
	if err != nil {
		h.logger.WarnContext(ctx, "enroll roster failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, rosterToDTO(item))
}

func (h *Handler) ListRostersByCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRostersByCompetition")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	items, err := h.rosterService.ListByCompetition(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list rosters failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]rosterDTO, 0, len(items))
	for _, item := range items {
		out = append(out, rosterToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	rosterID := r.PathValue("rosterID")
	item, err := h.rosterService.Get(ctx, rosterID)
	if err != nil {
		h.logger.WarnContext(ctx, "get roster failed", "roster_id", rosterID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(item))
}

func (h *Handler) ListRosterProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRosterProgression")
	defer span.End()

	rosterID := r.PathValue("rosterID")
	events, err := h.rosterService.ListProgression(ctx, rosterID)
	if err != nil {
		h.logger.WarnContext(ctx, "list roster progression failed", "roster_id", rosterID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]progressionEventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, progressionEventToDTO(ev))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateSchedule")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	result, err := h.scheduleService.Generate(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "generate schedule failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scheduleDTO{
		Rounds:  result.Rounds,
		Matches: matchesToDTO(result.Matches),
	})
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSchedule")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	deleted, err := h.scheduleService.DeleteSchedule(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "delete schedule failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, deletedDTO{Deleted: deleted})
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	rows, err := h.standingService.List(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rows)
}
