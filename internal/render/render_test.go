package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/akopylova/kabinet/internal/model"
)

func TestMarkdown(t *testing.T) {
	out := string(Markdown("# Заголовок\n\n**жирный** текст"))
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Заголовок") {
		t.Errorf("heading not rendered: %s", out)
	}
	if !strings.Contains(out, "<strong>жирный</strong>") {
		t.Errorf("bold not rendered: %s", out)
	}
}

func TestMarkdownEscapesRawHTMLByDefault(t *testing.T) {
	out := string(Markdown("<script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Errorf("raw script tag passed through: %s", out)
	}
}

func TestNewParsesAllTemplates(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	content := &model.SiteContent{}
	content.Site.Name = "Имя"
	content.Normalize()
	page := &Page{Site: content.Site, Content: content}

	for _, name := range []string{
		"index.html", "about.html", "services.html", "contact.html",
		"documents.html", "announcements.html", "articles.html", "404.html",
		"login.html", "dashboard.html", "edit_site.html", "edit_index.html",
		"edit_about.html", "edit_services.html", "edit_contact.html",
		"edit_documents.html", "articles_list.html", "announcements_list.html",
	} {
		var buf bytes.Buffer
		if err := r.Render(&buf, name, page); err != nil {
			t.Errorf("render %s: %v", name, err)
		}
	}
}

func TestRenderArticlePage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	content := &model.SiteContent{}
	content.Normalize()
	page := &Page{
		Site:    content.Site,
		Content: content,
		Article: &model.Article{Slug: "s", Title: "Статья", Content: "## Раздел"},
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "article.html", page); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<h2") {
		t.Error("markdown content not rendered through the markdown func")
	}
}
