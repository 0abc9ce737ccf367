package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/store"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()

	dataDir := t.TempDir()
	staticDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "build")

	st := store.New(dataDir)
	content := &model.SiteContent{}
	content.Site.Name = "Анна Копылова"
	content.Site.Role = "Психолог"
	content.Site.Tagline = "Консультации онлайн"
	content.Hero.Title = "Главный заголовок"
	content.Normalize()
	if err := st.SaveContent(content); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveArticles([]model.Article{
		{Slug: "pervaya", Title: "Первая статья", Excerpt: "Анонс", Content: "# Текст", Published: true},
		{Slug: "chernovik", Title: "Черновик", Published: false},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveAnnouncements([]model.Announcement{
		{Slug: "vstrecha", Title: "Встреча", Date: "2026-09-12", Published: true},
	}); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(staticDir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "css", "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("create renderer: %v", err)
	}
	return &Exporter{
		Store:     st,
		Renderer:  renderer,
		StaticDir: staticDir,
		OutDir:    outDir,
		BaseURL:   "https://example.com",
	}
}

func TestExportTree(t *testing.T) {
	e := newTestExporter(t)
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Every logical page has an index.html.
	for _, p := range []string{
		"index.html",
		"about/index.html",
		"services/index.html",
		"contact/index.html",
		"documents/index.html",
		"announcements/index.html",
		"articles/index.html",
		"404.html",
	} {
		if _, err := os.Stat(filepath.Join(e.OutDir, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	// Published articles get a page, drafts do not.
	if _, err := os.Stat(filepath.Join(e.OutDir, "articles", "pervaya", "index.html")); err != nil {
		t.Error("published article page missing")
	}
	if _, err := os.Stat(filepath.Join(e.OutDir, "articles", "chernovik")); !os.IsNotExist(err) {
		t.Error("draft article was exported")
	}

	// Static assets are copied under static/.
	if _, err := os.Stat(filepath.Join(e.OutDir, "static", "css", "style.css")); err != nil {
		t.Error("static asset not copied")
	}

	// No admin subtree ever.
	if _, err := os.Stat(filepath.Join(e.OutDir, "admin")); !os.IsNotExist(err) {
		t.Error("admin subtree present in export")
	}
}

func TestExportedHomePage(t *testing.T) {
	e := newTestExporter(t)
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(filepath.Join(e.OutDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parse home page: %v", err)
	}

	if h1 := doc.Find("h1").First().Text(); h1 != "Главный заголовок" {
		t.Errorf("h1 = %q", h1)
	}
	if title := doc.Find("title").Text(); !strings.Contains(title, "Анна Копылова") {
		t.Errorf("title = %q", title)
	}
}

func TestExportedArticlePage(t *testing.T) {
	e := newTestExporter(t)
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(filepath.Join(e.OutDir, "articles", "pervaya", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatal(err)
	}
	// Markdown content is rendered to HTML.
	if doc.Find(".article-body h1").Length() == 0 {
		t.Error("markdown heading not rendered")
	}
}

func TestExportedFeed(t *testing.T) {
	e := newTestExporter(t)
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(filepath.Join(e.OutDir, "feed.xml"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	feed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		t.Fatalf("feed does not parse: %v", err)
	}
	if feed.Title != "Анна Копылова" {
		t.Errorf("feed title = %q", feed.Title)
	}
	if len(feed.Items) != 1 {
		t.Fatalf("got %d feed items, want 1 (drafts excluded)", len(feed.Items))
	}
	if feed.Items[0].Link != "https://example.com/articles/pervaya/" {
		t.Errorf("item link = %q", feed.Items[0].Link)
	}
}

func TestExportReplacesStaleTree(t *testing.T) {
	e := newTestExporter(t)
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(e.OutDir, "stale.html")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived re-export")
	}
}

func TestExportCancelled(t *testing.T) {
	e := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Export(ctx); err == nil {
		t.Error("cancelled export did not error")
	}
}
