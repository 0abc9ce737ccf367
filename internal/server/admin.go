package server

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/akopylova/kabinet/internal/editor"
	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/render"
)

// --- Auth ---

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	page := &render.Page{Flash: popFlash(w, r)}
	s.render(w, "login.html", page)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("password") != s.cfg.AdminPassword {
		setFlash(w, "Неверный пароль")
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	token, err := s.db.CreateSession()
	if err != nil {
		s.serverError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logrus.Info("admin logged in")
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.db.DeleteSession(c.Value); err != nil {
			logrus.WithError(err).Warn("delete session")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// --- Dashboard ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	content, err := s.store.Content()
	if err != nil {
		s.serverError(w, err)
		return
	}
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}
	runs, err := s.db.RecentRuns(10)
	if err != nil {
		logrus.WithError(err).Warn("load deploy history")
	}
	page := &render.Page{
		Site:          content.Site,
		Content:       content,
		Articles:      articles,
		Announcements: announcements,
		Runs:          runs,
		Flash:         popFlash(w, r),
	}
	s.render(w, "dashboard.html", page)
}

// --- Section Editors ---

// renderEditor shows an admin form backed by the current documents.
func (s *Server) renderEditor(w http.ResponseWriter, r *http.Request, name string) {
	content, err := s.store.Content()
	if err != nil {
		s.serverError(w, err)
		return
	}
	page := &render.Page{Site: content.Site, Content: content, Flash: popFlash(w, r)}
	s.render(w, name, page)
}

// saveSection runs apply against the loaded content under a parsed form
// and redirects back to the editor with a flash message.
func (s *Server) saveSection(w http.ResponseWriter, r *http.Request, apply func(c *model.SiteContent) error, flash, back string) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	content, err := s.store.Content()
	if err != nil {
		s.serverError(w, err)
		return
	}
	if err := apply(content); err != nil {
		s.serverError(w, err)
		return
	}
	if err := s.store.SaveContent(content); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, flash)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// formFile returns the uploaded file for key, or nils when absent.
func formFile(r *http.Request, key string) (multipart.File, string) {
	if r.MultipartForm == nil {
		return nil, ""
	}
	f, fh, err := r.FormFile(key)
	if err != nil {
		return nil, ""
	}
	return f, fh.Filename
}

func (s *Server) handleEditSite(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_site.html")
}

func (s *Server) handleSaveSite(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		editor.ApplySite(c, r.PostForm)
		return nil
	}, "Настройки сайта сохранены", "/admin/site")
}

func (s *Server) handleEditHome(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_index.html")
}

func (s *Server) handleSaveHome(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		file, name := formFile(r, "hero_image_file")
		img, err := s.uploads.ApplyImage(c.Hero.Image, file, name,
			r.PostForm.Get("hero_remove_image") == "1", "pages")
		if err != nil {
			return err
		}
		c.Hero.Image = img

		file, name = formFile(r, "about_preview_image_file")
		img, err = s.uploads.ApplyImage(c.AboutPreview.Image, file, name,
			r.PostForm.Get("about_preview_remove_image") == "1", "pages")
		if err != nil {
			return err
		}
		c.AboutPreview.Image = img

		editor.ApplyHome(c, r.PostForm)
		return nil
	}, "Главная страница сохранена", "/admin/index")
}

func (s *Server) handleEditAbout(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_about.html")
}

func (s *Server) handleSaveAbout(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		file, name := formFile(r, "about_image_file")
		img, err := s.uploads.ApplyImage(c.AboutPage.Image, file, name,
			r.PostForm.Get("about_remove_image") == "1", "pages")
		if err != nil {
			return err
		}
		c.AboutPage.Image = img

		editor.ApplyAbout(c, r.PostForm)
		return nil
	}, "Страница «Обо мне» сохранена", "/admin/about")
}

func (s *Server) handleEditServices(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_services.html")
}

func (s *Server) handleSaveServices(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		editor.ApplyServices(c, r.PostForm)
		return nil
	}, "Услуги сохранены", "/admin/services")
}

func (s *Server) handleEditContact(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_contact.html")
}

func (s *Server) handleSaveContact(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		editor.ApplyContact(c, r.PostForm)
		return nil
	}, "Страница контактов сохранена", "/admin/contact")
}

func (s *Server) handleEditDocuments(w http.ResponseWriter, r *http.Request) {
	s.renderEditor(w, r, "edit_documents.html")
}

func (s *Server) handleSaveDocuments(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		// Store every accepted upload first so new entries carry their
		// final relative paths when the form is applied.
		var newDocs []model.Doc
		if r.MultipartForm != nil {
			titles := r.PostForm["new_file_title"]
			for i, fh := range r.MultipartForm.File["new_files"] {
				if fh.Filename == "" {
					continue
				}
				f, err := fh.Open()
				if err != nil {
					return err
				}
				path, err := s.uploads.Save(f, fh.Filename, "documents")
				f.Close()
				if err != nil {
					return err
				}
				if path == "" {
					continue
				}
				title := ""
				if i < len(titles) {
					title = strings.TrimSpace(titles[i])
				}
				newDocs = append(newDocs, model.Doc{Image: path, Title: title})
			}
		}
		editor.ApplyDocuments(&c.DocumentsPage, r.PostForm, newDocs, s.uploads.Remove)
		return nil
	}, "Документы сохранены", "/admin/documents")
}
