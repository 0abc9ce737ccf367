package publish

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akopylova/kabinet/internal/model"
)

// RSS 2.0 document for the published articles.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
}

// writeFeed generates feed.xml with one item per published article.
func (e *Exporter) writeFeed(published []model.Article) error {
	content, err := e.Store.Content()
	if err != nil {
		return err
	}
	base := strings.TrimRight(e.BaseURL, "/")
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       content.Site.Name,
			Link:        base + "/",
			Description: content.Site.Tagline,
		},
	}
	for _, a := range published {
		link := fmt.Sprintf("%s/articles/%s/", base, a.Slug)
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       a.Title,
			Link:        link,
			GUID:        link,
			Description: a.Excerpt,
		})
	}
	data, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(filepath.Join(e.OutDir, "feed.xml"), data, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}
