// Package render owns the HTML templates shared by the live server and
// the static exporter.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/akopylova/kabinet/internal/model"
)

//go:embed templates/*.html templates/admin/*.html
var templatesFS embed.FS

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(highlighting.WithStyle("monokai")),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Markdown converts article markdown to HTML for templates.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// Page is the data context handed to every template.
type Page struct {
	Site          model.SiteSettings
	Content       *model.SiteContent
	Articles      []model.Article
	Announcements []model.Announcement
	Article       *model.Article
	Announcement  *model.Announcement
	IsNew         bool
	Flash         string
	Runs          []model.DeployRun
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded template set.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": Markdown,
		"year":     func() int { return time.Now().Year() },
	}).ParseFS(templatesFS, "templates/*.html", "templates/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template into w.
func (r *Renderer) Render(w io.Writer, name string, data *Page) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
