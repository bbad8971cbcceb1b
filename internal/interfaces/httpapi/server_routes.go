package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerCompetitionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/competitions", handler.CreateCompetition)
	mux.HandleFunc("GET /v1/competitions/{competitionID}", handler.GetCompetition)
	mux.HandleFunc("POST /v1/competitions/{competitionID}/rosters", handler.EnrollRoster)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/rosters", handler.ListRostersByCompetition)
	mux.HandleFunc("POST /v1/competitions/{competitionID}/schedule", handler.GenerateSchedule)
	mux.HandleFunc("DELETE /v1/competitions/{competitionID}/schedule", handler.DeleteSchedule)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/matches", handler.ListMatchesByCompetition)
	mux.HandleFunc("POST /v1/competitions/{competitionID}/matches", handler.CreateMatch)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/standings", handler.ListStandings)
}

func registerRosterRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rosters/{rosterID}", handler.GetRoster)
	mux.HandleFunc("GET /v1/rosters/{rosterID}/progression", handler.ListRosterProgression)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/report", handler.ReportMatch)
	mux.HandleFunc("PUT /v1/matches/{matchID}", handler.EditMatch)
	mux.HandleFunc("DELETE /v1/matches/{matchID}", handler.DeleteMatch)
}
