// Package store persists the editable content documents as JSON files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/akopylova/kabinet/internal/model"
)

// Document file names inside the content directory.
const (
	ContentFile       = "content.json"
	ArticlesFile      = "articles.json"
	AnnouncementsFile = "announcements.json"
)

// Store reads and writes the three content documents under a single
// directory. Writes are serialized through a mutex and land via a temp
// file plus rename, so a crash leaves either the old or the new document.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the content directory.
func (s *Store) Dir() string {
	return s.dir
}

// Content loads and normalizes content.json.
func (s *Store) Content() (*model.SiteContent, error) {
	var c model.SiteContent
	if err := s.readJSON(ContentFile, &c); err != nil {
		return nil, err
	}
	c.Normalize()
	return &c, nil
}

// SaveContent writes content.json.
func (s *Store) SaveContent(c *model.SiteContent) error {
	return s.writeJSON(ContentFile, c)
}

// Articles loads articles.json.
func (s *Store) Articles() ([]model.Article, error) {
	var a []model.Article
	if err := s.readJSON(ArticlesFile, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveArticles writes articles.json.
func (s *Store) SaveArticles(a []model.Article) error {
	if a == nil {
		a = []model.Article{}
	}
	return s.writeJSON(ArticlesFile, a)
}

// Announcements loads announcements.json.
func (s *Store) Announcements() ([]model.Announcement, error) {
	var a []model.Announcement
	if err := s.readJSON(AnnouncementsFile, &a); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveAnnouncements writes announcements.json.
func (s *Store) SaveAnnouncements(a []model.Announcement) error {
	if a == nil {
		a = []model.Announcement{}
	}
	return s.writeJSON(AnnouncementsFile, a)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
