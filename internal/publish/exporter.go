// Package publish turns the live site into a static tree and pushes it to
// the hosting repository.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/render"
	"github.com/akopylova/kabinet/internal/store"
)

// The fixed set of logical pages. Article pages are added per published
// article at export time.
var staticPages = []struct {
	Path     string // URL path, "/"-terminated
	Template string
}{
	{"/", "index.html"},
	{"/about/", "about.html"},
	{"/services/", "services.html"},
	{"/contact/", "contact.html"},
	{"/documents/", "documents.html"},
	{"/announcements/", "announcements.html"},
	{"/articles/", "articles.html"},
}

// Exporter renders the public pages into a directory tree suitable for
// direct hosting. Re-running regenerates the same tree from the current
// documents.
type Exporter struct {
	Store     *store.Store
	Renderer  *render.Renderer
	StaticDir string
	OutDir    string
	BaseURL   string
}

// Export cleans the output directory and regenerates the whole tree:
// static assets, every logical page, one page per published article, the
// RSS feed and the 404 page. Admin pages are never part of the page set,
// but the admin subtree is removed afterwards as a guard.
func (e *Exporter) Export(ctx context.Context) error {
	content, err := e.Store.Content()
	if err != nil {
		return err
	}
	articles, err := e.Store.Articles()
	if err != nil {
		return err
	}
	announcements, err := e.Store.Announcements()
	if err != nil {
		return err
	}
	published := publishedArticles(articles)
	publishedAnns := publishedAnnouncements(announcements)

	if err := os.RemoveAll(e.OutDir); err != nil {
		return fmt.Errorf("clean output dir: %w", err)
	}
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := copyDirContents(e.StaticDir, filepath.Join(e.OutDir, "static")); err != nil {
		return fmt.Errorf("copy static assets: %w", err)
	}

	base := &render.Page{
		Site:          content.Site,
		Content:       content,
		Articles:      published,
		Announcements: publishedAnns,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range staticPages {
		p := p
		g.Go(func() error {
			return e.writePage(ctx, filepath.Join(e.OutDir, filepath.FromSlash(p.Path), "index.html"), p.Template, base)
		})
	}
	g.Go(func() error {
		return e.writePage(ctx, filepath.Join(e.OutDir, "404.html"), "404.html", base)
	})
	for i := range published {
		art := published[i]
		g.Go(func() error {
			data := *base
			data.Article = &art
			out := filepath.Join(e.OutDir, "articles", art.Slug, "index.html")
			return e.writePage(ctx, out, "article.html", &data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := e.writeFeed(published); err != nil {
		return err
	}

	// Admin pages are not enumerated above, but make sure none survive.
	os.RemoveAll(filepath.Join(e.OutDir, "admin"))
	return nil
}

func (e *Exporter) writePage(ctx context.Context, outPath, tmplName string, data *render.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := e.Renderer.Render(&buf, tmplName, data); err != nil {
		return fmt.Errorf("render %s: %w", tmplName, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

func publishedArticles(all []model.Article) []model.Article {
	out := []model.Article{}
	for _, a := range all {
		if a.Published {
			out = append(out, a)
		}
	}
	return out
}

func publishedAnnouncements(all []model.Announcement) []model.Announcement {
	out := []model.Announcement{}
	for _, a := range all {
		if a.Published {
			out = append(out, a)
		}
	}
	return out
}

// copyDirContents recursively copies src into dst.
func copyDirContents(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
