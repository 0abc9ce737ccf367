package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/akopylova/kabinet/internal/editor"
	"github.com/akopylova/kabinet/internal/metrics"
	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/publish"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/slug"
	"github.com/akopylova/kabinet/internal/upload"
)

// --- Articles ---

func (s *Server) handleArticlesList(w http.ResponseWriter, r *http.Request) {
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
	page := &render.Page{
		Site: content.Site, Content: content,
		Articles: articles, Flash: popFlash(w, r),
	}
	s.render(w, "articles_list.html", page)
}

func (s *Server) handleSaveArticlesCTA(w http.ResponseWriter, r *http.Request) {
	s.saveSection(w, r, func(c *model.SiteContent) error {
		editor.ApplyArticlesCTA(c, r.PostForm)
		return nil
	}, "CTA статей сохранён", "/admin/articles")
}

func (s *Server) handleArticleNewForm(w http.ResponseWriter, r *http.Request) {
	page := &render.Page{IsNew: true, Flash: popFlash(w, r)}
	s.render(w, "edit_article.html", page)
}

func (s *Server) handleArticleNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}

	title := strings.TrimSpace(r.PostForm.Get("title"))
	candidate := strings.TrimSpace(r.PostForm.Get("slug"))
	if candidate == "" {
		candidate = slug.Make(title)
	}

	image := ""
	if file, name := formFile(r, "image_file"); file != nil {
		path, err := s.uploads.ApplyImage("", file, name, false, "articles")
		if err != nil {
			s.serverError(w, err)
			return
		}
		image = path
	}

	_, published := r.PostForm["published"]
	articles = append(articles, model.Article{
		Slug:      slug.EnsureUnique(candidate, articleSlugs(articles), ""),
		Title:     title,
		Image:     image,
		Excerpt:   strings.TrimSpace(r.PostForm.Get("excerpt")),
		Content:   strings.TrimSpace(r.PostForm.Get("content")),
		Published: published,
	})
	if err := s.store.SaveArticles(articles); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Статья создана")
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

func (s *Server) handleArticleEditForm(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}
	for i := range articles {
		if articles[i].Slug == chi.URLParam(r, "slug") {
			page := &render.Page{Article: &articles[i], Flash: popFlash(w, r)}
			s.render(w, "edit_article.html", page)
			return
		}
	}
	s.handleNotFound(w, r)
}

func (s *Server) handleArticleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}
	idx := -1
	for i := range articles {
		if articles[i].Slug == chi.URLParam(r, "slug") {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.handleNotFound(w, r)
		return
	}
	art := &articles[idx]

	art.Title = strings.TrimSpace(editorField(r, "title", art.Title))
	candidate := strings.TrimSpace(editorField(r, "slug", art.Slug))
	art.Slug = slug.EnsureUnique(candidate, articleSlugs(articles), art.Slug)

	file, name := formFile(r, "image_file")
	img, err := s.uploads.ApplyImage(art.Image, file, name,
		r.PostForm.Get("remove_image") == "1", "articles")
	if err != nil {
		s.serverError(w, err)
		return
	}
	art.Image = img

	art.Excerpt = strings.TrimSpace(editorField(r, "excerpt", art.Excerpt))
	art.Content = strings.TrimSpace(editorField(r, "content", art.Content))
	_, art.Published = r.PostForm["published"]

	if err := s.store.SaveArticles(articles); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Статья обновлена")
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

func (s *Server) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	articles, err := s.store.Articles()
	if err != nil {
		s.serverError(w, err)
		return
	}
	kept := articles[:0]
	for i := range articles {
		if articles[i].Slug == chi.URLParam(r, "slug") {
			if upload.Owned(articles[i].Image) {
				s.uploads.Remove(articles[i].Image)
			}
			continue
		}
		kept = append(kept, articles[i])
	}
	if err := s.store.SaveArticles(kept); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Статья удалена")
	http.Redirect(w, r, "/admin/articles", http.StatusSeeOther)
}

// --- Announcements ---

func (s *Server) handleAnnouncementsList(w http.ResponseWriter, r *http.Request) {
	content, err := s.store.Content()
	if err != nil {
		s.serverError(w, err)
		return
	}
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}
	page := &render.Page{
		Site: content.Site, Content: content,
		Announcements: announcements, Flash: popFlash(w, r),
	}
	s.render(w, "announcements_list.html", page)
}

func (s *Server) handleAnnouncementNewForm(w http.ResponseWriter, r *http.Request) {
	page := &render.Page{IsNew: true, Flash: popFlash(w, r)}
	s.render(w, "edit_announcement.html", page)
}

func (s *Server) handleAnnouncementNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}

	title := strings.TrimSpace(r.PostForm.Get("title"))
	candidate := strings.TrimSpace(r.PostForm.Get("slug"))
	if candidate == "" {
		candidate = slug.Make(title)
	}

	image := ""
	if file, name := formFile(r, "image_file"); file != nil {
		path, err := s.uploads.ApplyImage("", file, name, false, "announcements")
		if err != nil {
			s.serverError(w, err)
			return
		}
		image = path
	}

	_, published := r.PostForm["published"]
	announcements = append(announcements, model.Announcement{
		Slug:        slug.EnsureUnique(candidate, announcementSlugs(announcements), ""),
		Title:       title,
		Date:        strings.TrimSpace(r.PostForm.Get("date")),
		Time:        strings.TrimSpace(r.PostForm.Get("time")),
		Location:    strings.TrimSpace(r.PostForm.Get("location")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		Image:       image,
		Published:   published,
	})
	if err := s.store.SaveAnnouncements(announcements); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Анонс создан")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

func (s *Server) handleAnnouncementEditForm(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}
	for i := range announcements {
		if announcements[i].Slug == chi.URLParam(r, "slug") {
			page := &render.Page{Announcement: &announcements[i], Flash: popFlash(w, r)}
			s.render(w, "edit_announcement.html", page)
			return
		}
	}
	s.handleNotFound(w, r)
}

func (s *Server) handleAnnouncementEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && err != http.ErrNotMultipart {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}
	idx := -1
	for i := range announcements {
		if announcements[i].Slug == chi.URLParam(r, "slug") {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.handleNotFound(w, r)
		return
	}
	ann := &announcements[idx]

	ann.Title = strings.TrimSpace(editorField(r, "title", ann.Title))
	candidate := strings.TrimSpace(editorField(r, "slug", ann.Slug))
	ann.Slug = slug.EnsureUnique(candidate, announcementSlugs(announcements), ann.Slug)
	ann.Date = strings.TrimSpace(editorField(r, "date", ann.Date))
	ann.Time = strings.TrimSpace(editorField(r, "time", ann.Time))
	ann.Location = strings.TrimSpace(editorField(r, "location", ann.Location))
	ann.Description = strings.TrimSpace(editorField(r, "description", ann.Description))

	file, name := formFile(r, "image_file")
	img, err := s.uploads.ApplyImage(ann.Image, file, name,
		r.PostForm.Get("remove_image") == "1", "announcements")
	if err != nil {
		s.serverError(w, err)
		return
	}
	ann.Image = img
	_, ann.Published = r.PostForm["published"]

	if err := s.store.SaveAnnouncements(announcements); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Анонс обновлён")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

func (s *Server) handleAnnouncementDelete(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.store.Announcements()
	if err != nil {
		s.serverError(w, err)
		return
	}
	kept := announcements[:0]
	for i := range announcements {
		if announcements[i].Slug == chi.URLParam(r, "slug") {
			if upload.Owned(announcements[i].Image) {
				s.uploads.Remove(announcements[i].Image)
			}
			continue
		}
		kept = append(kept, announcements[i])
	}
	if err := s.store.SaveAnnouncements(kept); err != nil {
		s.serverError(w, err)
		return
	}
	setFlash(w, "Анонс удалён")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

// --- Upload & Deploy ---

// handleUpload accepts a single image and answers with its relative path,
// for use by the editor widgets.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Файл не выбран"})
		return
	}
	file, name := formFile(r, "file")
	if file == nil || name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Файл не выбран"})
		return
	}
	defer file.Close()
	subfolder := r.PostForm.Get("subfolder")
	switch subfolder {
	case "pages", "articles", "announcements", "documents":
	default:
		// Anything else, including no subfolder at all, lands at the
		// uploads root rather than leaking a caller-chosen path.
		subfolder = ""
	}
	path, err := s.uploads.Save(file, name, subfolder)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Недопустимый формат файла"})
		return
	}
	metrics.UploadsTotal.WithLabelValues(subfolder).Inc()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "path": path})
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	if err := s.deployer.Start(); err != nil {
		if errors.Is(err, publish.ErrDeployRunning) {
			writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error": "Деплой уже выполняется"})
			return
		}
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDeployStatus(w http.ResponseWriter, r *http.Request) {
	st := s.deployer.Status()
	var result any
	if st.Result != "" {
		result = st.Result
	}
	log := st.Log
	if log == nil {
		log = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"running":     st.Running,
		"log":         log,
		"last_result": result,
	})
}

// --- Helpers ---

// editorField mirrors the form semantics of the section editors: an absent
// key keeps the current value, a present key replaces it even when blank.
func editorField(r *http.Request, key, current string) string {
	if _, ok := r.PostForm[key]; !ok {
		return current
	}
	return r.PostForm.Get(key)
}

func articleSlugs(articles []model.Article) []string {
	out := make([]string, len(articles))
	for i := range articles {
		out[i] = articles[i].Slug
	}
	return out
}

func announcementSlugs(announcements []model.Announcement) []string {
	out := make([]string, len(announcements))
	for i := range announcements {
		out[i] = announcements[i].Slug
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}
