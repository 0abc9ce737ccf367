package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akopylova/kabinet/internal/config"
	"github.com/akopylova/kabinet/internal/database"
	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/publish"
	"github.com/akopylova/kabinet/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	dataDir := t.TempDir()
	staticDir := t.TempDir()

	st := store.New(dataDir)
	content := &model.SiteContent{}
	content.Site.Name = "Анна Копылова"
	content.Site.Role = "Психолог"
	content.Hero.Title = "Заголовок"
	content.Normalize()
	if err := st.SaveContent(content); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveArticles([]model.Article{
		{Slug: "otkrytaya", Title: "Открытая статья", Content: "Текст", Published: true},
		{Slug: "chernovik", Title: "Черновик", Published: false},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveAnnouncements([]model.Announcement{}); err != nil {
		t.Fatal(err)
	}

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		Addr:          ":0",
		DataDir:       dataDir,
		StaticDir:     staticDir,
		AdminPassword: "secret",
	}
	srv, err := New(cfg, st, db, &publish.Deployer{})
	if err != nil {
		t.Fatal(err)
	}
	return srv, st
}

// login authenticates against the test server and returns the session
// cookie.
func login(t *testing.T, srv *Server) *http.Cookie {
	t.Helper()
	form := url.Values{"password": {"secret"}}
	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestPublicPages(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/", "/about/", "/services/", "/contact/", "/documents/", "/announcements/", "/articles/"} {
		w := get(srv, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}

	w := get(srv, "/", nil)
	if !strings.Contains(w.Body.String(), "Заголовок") {
		t.Error("home page missing hero title")
	}
}

func TestArticleVisibility(t *testing.T) {
	srv, _ := newTestServer(t)

	if w := get(srv, "/articles/otkrytaya/", nil); w.Code != http.StatusOK {
		t.Errorf("published article = %d", w.Code)
	}
	if w := get(srv, "/articles/chernovik/", nil); w.Code != http.StatusNotFound {
		t.Errorf("draft article = %d, want 404", w.Code)
	}
	if w := get(srv, "/articles/net-takoy/", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown slug = %d, want 404", w.Code)
	}

	// The articles listing shows only published entries.
	w := get(srv, "/articles/", nil)
	if !strings.Contains(w.Body.String(), "Открытая статья") {
		t.Error("published article missing from listing")
	}
	if strings.Contains(w.Body.String(), "Черновик") {
		t.Error("draft leaked into public listing")
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/admin/", "/admin/site", "/admin/articles"} {
		w := get(srv, path, nil)
		if w.Code != http.StatusSeeOther {
			t.Errorf("GET %s without session = %d, want redirect", path, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("GET %s redirects to %q", path, loc)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	w := postForm(srv, "/admin/login", url.Values{"password": {"wrong"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("redirect = %q", loc)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			t.Error("session cookie set on failed login")
		}
	}
}

func TestLoginLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := login(t, srv)

	if w := get(srv, "/admin/", cookie); w.Code != http.StatusOK {
		t.Errorf("dashboard with session = %d", w.Code)
	}

	w := get(srv, "/admin/logout", cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("logout = %d", w.Code)
	}
	// The session is gone server side, not only in the cookie jar.
	if w := get(srv, "/admin/", cookie); w.Code != http.StatusSeeOther {
		t.Errorf("dashboard after logout = %d, want redirect", w.Code)
	}
}

func TestSaveSiteSettings(t *testing.T) {
	srv, st := newTestServer(t)
	cookie := login(t, srv)

	w := postForm(srv, "/admin/site", url.Values{
		"name": {"Новое имя"},
		"role": {"Новая роль"},
	}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("save = %d", w.Code)
	}

	content, err := st.Content()
	if err != nil {
		t.Fatal(err)
	}
	if content.Site.Name != "Новое имя" || content.Site.Role != "Новая роль" {
		t.Errorf("site = %+v", content.Site)
	}
}

func TestCreateArticleGeneratesSlug(t *testing.T) {
	srv, st := newTestServer(t)
	cookie := login(t, srv)

	w := postForm(srv, "/admin/articles/new", url.Values{
		"title":     {"Пример Статьи"},
		"content":   {"Текст"},
		"published": {"1"},
	}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create = %d", w.Code)
	}

	articles, err := st.Articles()
	if err != nil {
		t.Fatal(err)
	}
	last := articles[len(articles)-1]
	if last.Slug != "primer-stati" {
		t.Errorf("slug = %q", last.Slug)
	}
	if !last.Published {
		t.Error("checkbox value not honored")
	}

	// A second article with the same title gets a suffixed slug.
	postForm(srv, "/admin/articles/new", url.Values{"title": {"Пример Статьи"}}, cookie)
	articles, _ = st.Articles()
	last = articles[len(articles)-1]
	if last.Slug != "primer-stati-2" {
		t.Errorf("second slug = %q", last.Slug)
	}
	if last.Published {
		t.Error("absent checkbox treated as published")
	}
}

func TestEditArticleUnpublish(t *testing.T) {
	srv, st := newTestServer(t)
	cookie := login(t, srv)

	// The form posts every text field; the checkbox is simply absent.
	w := postForm(srv, "/admin/articles/otkrytaya/edit", url.Values{
		"title":   {"Открытая статья"},
		"slug":    {"otkrytaya"},
		"excerpt": {""},
		"content": {"Текст"},
	}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("edit = %d", w.Code)
	}

	articles, _ := st.Articles()
	for _, a := range articles {
		if a.Slug == "otkrytaya" && a.Published {
			t.Error("article still published after unchecked checkbox")
		}
	}

	if w := get(srv, "/articles/otkrytaya/", nil); w.Code != http.StatusNotFound {
		t.Errorf("unpublished article still public: %d", w.Code)
	}
}

func TestDeleteArticle(t *testing.T) {
	srv, st := newTestServer(t)
	cookie := login(t, srv)

	w := postForm(srv, "/admin/articles/otkrytaya/delete", url.Values{}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("delete = %d", w.Code)
	}
	articles, _ := st.Articles()
	for _, a := range articles {
		if a.Slug == "otkrytaya" {
			t.Error("article survived delete")
		}
	}
}

func TestUploadEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := login(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(fw, "png-bytes")
	mw.WriteField("subfolder", "pages")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK   bool   `json:"ok"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OK || resp.Path != "uploads/pages/photo.png" {
		t.Errorf("response = %+v", resp)
	}
}

func TestUploadRejectsBadExtension(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := login(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "malware.exe")
	io.WriteString(fw, "nope")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("upload = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Недопустимый формат файла") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUploadUnknownSubfolderLandsAtRoot(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := login(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "schema.png")
	io.WriteString(fw, "png-bytes")
	mw.WriteField("subfolder", "../outside")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		OK   bool   `json:"ok"`
		Path string `json:"path"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OK || resp.Path != "uploads/schema.png" {
		t.Errorf("response = %+v", resp)
	}
}

func TestOversizedUploadRejected(t *testing.T) {
	srv, st := newTestServer(t)
	cookie := login(t, srv)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image_file", "big.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte("x"), 20<<20)); err != nil {
		t.Fatal(err)
	}
	mw.WriteField("title", "Слишком большая")
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/articles/new", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized post = %d, want 400", w.Code)
	}
	articles, err := st.Articles()
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range articles {
		if a.Title == "Слишком большая" {
			t.Error("oversized post still created an article")
		}
	}
}

func TestDeployStatusShape(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := login(t, srv)

	w := get(srv, "/admin/deploy/status", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Running    bool     `json:"running"`
		Log        []string `json:"log"`
		LastResult any      `json:"last_result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if resp.Running {
		t.Error("idle deployer reported running")
	}
	if resp.Log == nil {
		t.Error("log serialized as null")
	}
	if resp.LastResult != nil {
		t.Errorf("last_result = %v, want null before any run", resp.LastResult)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(srv, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("request counter not exposed")
	}
}
