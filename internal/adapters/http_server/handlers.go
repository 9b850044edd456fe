package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/observability"
	"github.com/JCCTorres/toplist-backend-sub001/internal/app"
	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

type Handlers struct {
	Q       *app.QueryService
	Auth    *app.AuthService
	Contact *app.ContactService
	Sync    *app.SyncService
	Repo    domain.PropertyRepository
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Get("/properties/{id}/availability", h.getAvailability)
		r.Get("/properties/{id}/rates", h.getRates)
		r.Get("/properties/{id}/reviews", h.listReviews)
		r.Get("/search", h.search)
		r.Get("/checkout-link", h.checkoutLink)
		r.Post("/contact", h.submitContact)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Post("/revoke", h.revoke)
			r.Get("/me", h.me)
			r.Get("/email-check", h.emailCheck)
			r.With(RequireAuth(h.Auth, true)).Get("/token-stats", h.tokenStats)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAuth(h.Auth, true))
			r.Post("/sync", h.triggerSync)
			r.Post("/fix-categories", h.fixCategories)
		})
	})
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	q := domain.CardsQuery{Limit: 24}
	if c := r.URL.Query().Get("category"); c != "" {
		q.Category = &c
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be an integer between 1 and 100", nil)
			return
		}
		q.Limit = l
	}
	if os := r.URL.Query().Get("offset"); os != "" {
		o, err := strconv.Atoi(os)
		if err != nil || o < 0 {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "offset must be a non-negative integer", nil)
			return
		}
		q.Offset = o
	}
	cards, err := h.Q.Cards(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, cards)
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	view, err := h.Q.Property(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (h *Handlers) getAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	out, err := h.Q.Availability(r.Context(), id, from, to)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handlers) getRates(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Rates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be an integer between 1 and 200", nil)
			return
		}
		limit = l
	}
	out, err := h.Q.Reviews(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := domain.SearchQuery{
		CheckIn:  qs.Get("check_in"),
		CheckOut: qs.Get("check_out"),
		Adults:   1,
	}
	var err error
	if a := qs.Get("adults"); a != "" {
		if q.Adults, err = strconv.Atoi(a); err != nil {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "adults must be an integer", nil)
			return
		}
	}
	if c := qs.Get("children"); c != "" {
		if q.Children, err = strconv.Atoi(c); err != nil {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "children must be an integer", nil)
			return
		}
	}
	out, err := h.Q.Search(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *Handlers) checkoutLink(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	airbnbID := qs.Get("airbnb_id")
	if airbnbID == "" {
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "airbnb_id is required", nil)
		return
	}
	cp, err := h.Repo.GetClientProperty(r.Context(), airbnbID)
	if err != nil {
		writeErr(w, err)
		return
	}
	p := app.TripParams{CheckIn: qs.Get("check_in"), CheckOut: qs.Get("check_out"), Adults: 1}
	if a := qs.Get("adults"); a != "" {
		if p.Adults, err = strconv.Atoi(a); err != nil {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "adults must be an integer", nil)
			return
		}
	}
	if c := qs.Get("children"); c != "" {
		if p.Children, err = strconv.Atoi(c); err != nil {
			writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "children must be an integer", nil)
			return
		}
	}
	link, err := app.BuildCheckoutLink(cp.AirbnbID, p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"url": link})
}

func (h *Handlers) submitContact(w http.ResponseWriter, r *http.Request) {
	var req app.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	id, err := h.Contact.Submit(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]string{"id": id})
}

// ---- admin ----

func (h *Handlers) triggerSync(w http.ResponseWriter, r *http.Request) {
	actor := "unknown"
	if sess, ok := sessionFrom(r.Context()); ok {
		actor = sess.Email
	}
	report, err := h.Sync.FullSync(r.Context())
	if err != nil {
		log.Error().Str("actor", actor).Err(err).Msg("manual sync failed")
		writeErr(w, err)
		return
	}
	observability.ObserveSync("synced", report.Synced)
	observability.ObserveSync("deactivated", report.Deactivated)
	observability.ObserveSync("failed", report.Failed)
	log.Info().
		Str("actor", actor).
		Int("synced", report.Synced).
		Int("deactivated", report.Deactivated).
		Int("failed", report.Failed).
		Msg("manual sync completed")
	writeData(w, http.StatusOK, report)
}

func (h *Handlers) fixCategories(w http.ResponseWriter, r *http.Request) {
	var corrections map[string]string
	if err := decodeBody(r, &corrections); err != nil {
		writeErr(w, err)
		return
	}
	if len(corrections) == 0 {
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", "no corrections given", nil)
		return
	}
	report := h.Sync.FixCategories(r.Context(), corrections)
	writeData(w, http.StatusOK, report)
}
