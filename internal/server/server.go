// Package server provides the HTTP server and handlers.
package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/akopylova/kabinet/internal/config"
	"github.com/akopylova/kabinet/internal/database"
	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/publish"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/store"
	"github.com/akopylova/kabinet/internal/upload"
)

// maxUploadSize caps multipart request bodies (16 MiB).
const maxUploadSize = 16 << 20

const sessionCookie = "kabinet_session"

// Server is the main HTTP server.
type Server struct {
	cfg      config.Config
	store    *store.Store
	db       *database.DB
	uploads  *upload.Manager
	renderer *render.Renderer
	deployer *publish.Deployer
	router   chi.Router
}

// New creates a new server.
func New(cfg config.Config, st *store.Store, db *database.DB, deployer *publish.Deployer) (*Server, error) {
	renderer, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		db:       db,
		uploads:  upload.New(cfg.StaticDir),
		renderer: renderer,
		deployer: deployer,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(s.requestLogger)
	r.Use(s.collectMetrics)

	// Serve static files (bundled assets and uploads).
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(s.cfg.StaticDir))))
	r.Handle("/metrics", promhttp.Handler())

	// Public pages.
	r.Get("/", s.handleHome)
	r.Get("/about/", s.handleAbout)
	r.Get("/services/", s.handleServices)
	r.Get("/contact/", s.handleContact)
	r.Get("/documents/", s.handleDocuments)
	r.Get("/announcements/", s.handleAnnouncements)
	r.Get("/articles/", s.handleArticles)
	r.Get("/articles/{slug}/", s.handleArticle)

	// Admin.
	r.Get("/admin/login", s.handleLoginForm)
	r.Post("/admin/login", s.handleLogin)
	r.Get("/admin/logout", s.handleLogout)
	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.limitBody)
		r.Get("/", s.handleDashboard)
		r.Get("/site", s.handleEditSite)
		r.Post("/site", s.handleSaveSite)
		r.Get("/index", s.handleEditHome)
		r.Post("/index", s.handleSaveHome)
		r.Get("/about", s.handleEditAbout)
		r.Post("/about", s.handleSaveAbout)
		r.Get("/services", s.handleEditServices)
		r.Post("/services", s.handleSaveServices)
		r.Get("/contact", s.handleEditContact)
		r.Post("/contact", s.handleSaveContact)
		r.Get("/documents", s.handleEditDocuments)
		r.Post("/documents", s.handleSaveDocuments)

		r.Get("/articles", s.handleArticlesList)
		r.Post("/articles", s.handleSaveArticlesCTA)
		r.Get("/articles/new", s.handleArticleNewForm)
		r.Post("/articles/new", s.handleArticleNew)
		r.Get("/articles/{slug}/edit", s.handleArticleEditForm)
		r.Post("/articles/{slug}/edit", s.handleArticleEdit)
		r.Post("/articles/{slug}/delete", s.handleArticleDelete)

		r.Get("/announcements", s.handleAnnouncementsList)
		r.Get("/announcements/new", s.handleAnnouncementNewForm)
		r.Post("/announcements/new", s.handleAnnouncementNew)
		r.Get("/announcements/{slug}/edit", s.handleAnnouncementEditForm)
		r.Post("/announcements/{slug}/edit", s.handleAnnouncementEdit)
		r.Post("/announcements/{slug}/delete", s.handleAnnouncementDelete)

		r.Post("/upload", s.handleUpload)
		r.Post("/deploy", s.handleDeploy)
		r.Get("/deploy/status", s.handleDeployStatus)
	})

	r.NotFound(s.handleNotFound)

	s.router = r
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server.
func (s *Server) Start() error {
	logrus.WithField("addr", s.cfg.Addr).Info("server starting")
	return http.ListenAndServe(s.cfg.Addr, s.router)
}

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "index.html", nil)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "about.html", nil)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "services.html", nil)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "contact.html", nil)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "documents.html", nil)
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "announcements.html", nil)
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	s.renderPublic(w, "articles.html", nil)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}
	for i := range articles {
		if articles[i].Slug == slugParam && articles[i].Published {
			s.renderPublic(w, "article.html", &articles[i])
			return
		}
	}
	s.handleNotFound(w, r)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	content, err := s.store.Content()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	page := &render.Page{Site: content.Site, Content: content}
	if err := s.renderer.Render(w, "404.html", page); err != nil {
		logrus.WithError(err).Error("render 404")
	}
}

// --- Helpers ---

// renderPublic loads the documents and executes a public page template.
// article, when non-nil, becomes the Article of the page context.
func (s *Server) renderPublic(w http.ResponseWriter, name string, article *model.Article) {
	content, err := s.store.Content()
	if err != nil {
		s.serverError(w, err)
		return
	}
	page := &render.Page{Site: content.Site, Content: content}

	switch name {
	case "articles.html", "article.html":
		all, err := s.store.Articles()
		if err != nil {
			s.serverError(w, err)
			return
		}
		for i := range all {
			if all[i].Published {
				page.Articles = append(page.Articles, all[i])
			}
		}
	case "announcements.html":
		all, err := s.store.Announcements()
		if err != nil {
			s.serverError(w, err)
			return
		}
		for i := range all {
			if all[i].Published {
				page.Announcements = append(page.Announcements, all[i])
			}
		}
	}
	page.Article = article
	s.render(w, name, page)
}

func (s *Server) render(w http.ResponseWriter, name string, page *render.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, name, page); err != nil {
		logrus.WithError(err).WithField("template", name).Error("template error")
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	logrus.WithError(err).Error("request failed")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Flash messages ride on a short-lived cookie, consumed on the next render.

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:  "flash",
		Value: url.QueryEscape(msg),
		Path:  "/",
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie("flash")
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
