package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/akopylova/kabinet/internal/model"
	"github.com/akopylova/kabinet/internal/slug"
	"github.com/akopylova/kabinet/internal/store"
)

// articleFrontmatter is the YAML header accepted on imported files. Every
// field is optional; the Markdown body becomes the article content.
type articleFrontmatter struct {
	Title     string `yaml:"title"`
	Slug      string `yaml:"slug"`
	Image     string `yaml:"image"`
	Excerpt   string `yaml:"excerpt"`
	Published bool   `yaml:"published"`
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import Markdown files as articles",
	Long: `Reads every .md file in the given directory, parses the YAML
frontmatter and appends the results to articles.json. Files without a
title take a title-cased form of their filename. Imported articles start
unpublished unless the frontmatter says otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st := store.New(cfg.DataDir)
		articles, err := st.Articles()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			articles = []model.Article{}
		}

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return fmt.Errorf("read import dir: %w", err)
		}

		titleCaser := cases.Title(language.Und)
		imported := 0
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
				continue
			}
			path := filepath.Join(args[0], entry.Name())
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			var fm articleFrontmatter
			body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
			if err != nil {
				logrus.WithError(err).WithField("file", entry.Name()).Warn("skip file")
				continue
			}

			title := strings.TrimSpace(fm.Title)
			if title == "" {
				base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
				title = titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
			}
			candidate := strings.TrimSpace(fm.Slug)
			if candidate == "" {
				candidate = slug.Make(title)
			}

			articles = append(articles, model.Article{
				Slug:      slug.EnsureUnique(candidate, articleSlugs(articles), ""),
				Title:     title,
				Image:     strings.TrimSpace(fm.Image),
				Excerpt:   strings.TrimSpace(fm.Excerpt),
				Content:   strings.TrimSpace(string(body)),
				Published: fm.Published,
			})
			imported++
			logrus.WithField("file", entry.Name()).Info("imported")
		}

		if imported == 0 {
			logrus.Info("nothing to import")
			return nil
		}
		if err := st.SaveArticles(articles); err != nil {
			return fmt.Errorf("save articles: %w", err)
		}
		logrus.WithField("count", imported).Info("import finished")
		return nil
	},
}

func articleSlugs(articles []model.Article) []string {
	out := make([]string, len(articles))
	for i := range articles {
		out[i] = articles[i].Slug
	}
	return out
}

func init() {
	rootCmd.AddCommand(importCmd)
}
