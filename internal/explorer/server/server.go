package server

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/marsha5813/crge-historical-database/internal/common/explorererrors"
	"github.com/marsha5813/crge-historical-database/internal/explorer/auth"
	"github.com/marsha5813/crge-historical-database/internal/explorer/model"
	"github.com/marsha5813/crge-historical-database/internal/explorer/repository"
	"github.com/marsha5813/crge-historical-database/internal/explorer/retrieval"
)

const (
	sessionCookieName     = "explorer_session"
	englishLabel          = "English"
	originalLanguageLabel = "原文 (Original Language)"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SignInClient is the part of the identity provider the server needs.
type SignInClient interface {
	PasswordSignIn(ctx context.Context, email string, password string) (string, error)
}

// RepositoryFactory builds a credentialed repository for a session token.
// A repository bound to a stale token is simply dropped with its request;
// the next request gets a fresh one.
type RepositoryFactory func(token string) repository.EntryRepository

// Server is the user-facing surface: sign-in form, filter controls and the
// grouped bilingual result view. Every interaction is one synchronous
// request: parse filter state, read through the cache, render.
type Server struct {
	sessions      *auth.SessionStore
	identity      SignInClient
	newRepository RepositoryFactory
	templates     *template.Template
}

func New(sessions *auth.SessionStore, identity SignInClient, newRepository RepositoryFactory) *Server {
	return &Server{
		sessions:      sessions,
		identity:      identity,
		newRepository: newRepository,
		templates:     template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/", s.handleBrowse)
	router.Post("/signin", s.handleSignIn)
	router.Post("/signout", s.handleSignOut)
	return router
}

type signInView struct {
	Email string
	Error string
}

type browseView struct {
	Options *retrieval.FilterOptions
	Filter  model.FilterSpec
	Tables  []*ResultTable
}

type errorView struct {
	Message  string
	RetryUrl string
}

// handleBrowse renders the sign-in form for anonymous visitors; no data
// query is ever attempted without a session.
func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	token, ok := s.sessionToken(r)
	if !ok {
		s.render(w, http.StatusOK, "signin.html", signInView{})
		return
	}

	ctx := r.Context()
	filter := filterFromQuery(r)
	pipeline := retrieval.NewPipeline(s.newRepository(token))

	options, err := pipeline.Options(ctx)
	if err != nil {
		s.renderQueryError(w, r, err)
		return
	}

	english, original, err := pipeline.Retrieve(ctx, filter)
	if err != nil {
		s.renderQueryError(w, r, err)
		return
	}

	s.render(w, http.StatusOK, "browse.html", browseView{
		Options: options,
		Filter:  filter,
		Tables: []*ResultTable{
			NewResultTable(englishLabel, english),
			NewResultTable(originalLanguageLabel, original),
		},
	})
}

// handleSignIn exchanges the submitted credentials for a token and redirects
// straight to the data view, so a successful sign-in never renders the form
// again. Failures re-render the form with the provider's message.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "signin.html", signInView{Error: "malformed form submission"})
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	token, err := s.identity.PasswordSignIn(r.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		var missing *explorererrors.ErrMissingCredentials
		if errors.As(err, &missing) {
			status = http.StatusBadRequest
		}
		s.render(w, status, "signin.html", signInView{Email: email, Error: err.Error()})
		return
	}

	id := s.sessions.Create(token)
	http.SetCookie(w, sessionCookie(id, 0))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, sessionCookie("", -1))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderQueryError turns a failed data fetch into a recoverable page: auth
// failures send the user back to the sign-in form, anything else gets a
// retry affordance. The interaction cycle never crashes on a QueryError.
func (s *Server) renderQueryError(w http.ResponseWriter, r *http.Request, err error) {
	if explorererrors.IsAuthError(err) {
		if cookie, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil {
			s.sessions.Delete(cookie.Value)
		}
		http.SetCookie(w, sessionCookie("", -1))
		s.render(w, http.StatusUnauthorized, "signin.html", signInView{
			Error: "your session has expired, please sign in again",
		})
		return
	}

	log.Errorf("query failed: %v", err)
	s.render(w, http.StatusInternalServerError, "error.html", errorView{
		Message:  err.Error(),
		RetryUrl: r.URL.RequestURI(),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("failed to render %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return s.sessions.Get(cookie.Value)
}

// filterFromQuery re-derives the filter state from the request; absent
// selects mean All and an absent search means no text constraint.
func filterFromQuery(r *http.Request) model.FilterSpec {
	query := r.URL.Query()
	filter := model.FilterSpec{
		Country: query.Get("country"),
		Period:  query.Get("period"),
		Section: query.Get("section"),
		Search:  query.Get("search"),
	}
	if filter.Country == "" {
		filter.Country = model.All
	}
	if filter.Period == "" {
		filter.Period = model.All
	}
	if filter.Section == "" {
		filter.Section = model.All
	}
	return filter
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
