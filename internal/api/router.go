package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"matchday-backend/internal/api/handlers"
	"matchday-backend/internal/api/httpx"
	"matchday-backend/internal/api/validate"
	"matchday-backend/internal/config"
	"matchday-backend/internal/metrics"
	"matchday-backend/internal/middleware"
	"matchday-backend/internal/models"
	"matchday-backend/internal/projection"
	repo "matchday-backend/internal/repository"
	"matchday-backend/internal/services"
)

const maxTeamNameLen = 60

type Deps struct {
	Cfg     config.Config
	Users   *services.UserService
	Picks   *services.PredictionService
	Scoring *services.ScoringService
	Proj    *projection.Projector
	AuthMW  *middleware.AuthMiddleware
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(middleware.HTTPMetrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Users)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(d.AuthMW.Auth)

			r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
				active, history := d.Proj.Matches()
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"active": active, "history": history})
			})

			r.Get("/matches/{id}/tally", func(w http.ResponseWriter, r *http.Request) {
				a, b, ok := d.Proj.VoteTally(chi.URLParam(r, "id"))
				if !ok {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "match not found", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, map[string]any{"team_a": a, "team_b": b})
			})

			r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
				httpx.WriteJSON(w, http.StatusOK, d.Proj.Leaderboard())
			})

			r.Get("/users/{id}/stats", func(w http.ResponseWriter, r *http.Request) {
				id := chi.URLParam(r, "id")
				if _, ok := d.Proj.UserByID(id); !ok {
					httpx.WriteError(w, http.StatusNotFound, "not_found", "user not found", nil)
					return
				}
				httpx.WriteJSON(w, http.StatusOK, d.Proj.Stats(id))
			})

			r.Post("/matches/{id}/pick", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := middleware.UserID(r.Context())
				var req struct {
					Team string `json:"team"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
					return
				}
				if err := d.Picks.SubmitPick(r.Context(), chi.URLParam(r, "id"), uid, req.Team); err != nil {
					writeServiceError(w, err)
					return
				}
				// a no-op on an expected race still answers 202: the pick
				// simply did not take, the projection tells the client why
				httpx.WriteJSON(w, http.StatusAccepted, map[string]string{
					"pick": d.Picks.CurrentPick(chi.URLParam(r, "id"), uid),
				})
			})

			r.Put("/profile", func(w http.ResponseWriter, r *http.Request) {
				uid, _ := middleware.UserID(r.Context())
				var req struct {
					Avatar   *string `json:"avatar"`
					Password *string `json:"password"`
				}
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
					return
				}
				if err := d.Users.UpdateProfile(r.Context(), uid, req.Avatar, req.Password); err != nil {
					writeServiceError(w, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			// admin surface
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
					httpx.WriteJSON(w, http.StatusOK, d.Proj.RemovableUsers())
				})

				r.Post("/matches", func(w http.ResponseWriter, r *http.Request) {
					uid, _ := middleware.UserID(r.Context())
					var req struct {
						TeamA          string    `json:"team_a"`
						TeamB          string    `json:"team_b"`
						ScheduledStart time.Time `json:"scheduled_start"`
					}
					if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
						httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
						return
					}
					var errs validate.Errs
					for _, e := range []*validate.ErrField{
						validate.Required("team_a", req.TeamA),
						validate.Required("team_b", req.TeamB),
						validate.MaxLen("team_a", req.TeamA, maxTeamNameLen),
						validate.MaxLen("team_b", req.TeamB, maxTeamNameLen),
					} {
						if e != nil {
							errs = append(errs, *e)
						}
					}
					if len(errs) > 0 {
						httpx.WriteError(w, http.StatusBadRequest, "bad_request", errs.Error(), errs)
						return
					}
					m, err := d.Scoring.CreateFixture(r.Context(), uid, req.TeamA, req.TeamB, req.ScheduledStart)
					if err != nil {
						writeServiceError(w, err)
						return
					}
					httpx.WriteJSON(w, http.StatusCreated, m)
				})

				r.Post("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
					var req struct {
						Winner string `json:"winner"`
					}
					if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
						httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
						return
					}
					m, err := d.Scoring.FinalizeWinner(r.Context(), chi.URLParam(r, "id"), req.Winner)
					if err != nil {
						writeServiceError(w, err)
						return
					}
					httpx.WriteJSON(w, http.StatusOK, m)
				})

				r.Post("/matches/{id}/abandon", func(w http.ResponseWriter, r *http.Request) {
					m, err := d.Scoring.MarkAbandoned(r.Context(), chi.URLParam(r, "id"))
					if err != nil {
						writeServiceError(w, err)
						return
					}
					httpx.WriteJSON(w, http.StatusOK, m)
				})

				r.Delete("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
					confirm := r.URL.Query().Get("confirm") == "true"
					if err := d.Scoring.DeleteFixture(r.Context(), chi.URLParam(r, "id"), confirm); err != nil {
						writeServiceError(w, err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})

				r.Delete("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
					uid, _ := middleware.UserID(r.Context())
					if err := d.Scoring.RemoveUserAccount(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
						writeServiceError(w, err)
						return
					}
					w.WriteHeader(http.StatusNoContent)
				})
			})
		})
	})

	return r
}

// writeServiceError maps service and store errors onto the response
// taxonomy: precondition violations are conflicts, validation problems are
// bad requests, everything else is a generic failure.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve models.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", ve.Error(), nil)
	case errors.Is(err, repo.ErrAlreadyFinalized), errors.Is(err, repo.ErrNotLive),
		errors.Is(err, repo.ErrNameTaken):
		httpx.WriteError(w, http.StatusConflict, "precondition_failed", err.Error(), nil)
	case errors.Is(err, repo.ErrMatchNotFound), errors.Is(err, repo.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case errors.Is(err, services.ErrUnknownTeam),
		errors.Is(err, services.ErrConfirmationRequired),
		errors.Is(err, services.ErrSelfRemoval),
		errors.Is(err, services.ErrAdminRemoval),
		errors.Is(err, services.ErrAvatarTooLarge):
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
