// Package editor maps submitted admin forms onto the content document.
// Editors are pure: they mutate the in-memory document and leave
// persistence and file uploads to the caller.
package editor

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/akopylova/kabinet/internal/model"
)

// field returns the submitted value for key, or current when the field is
// absent from the form. A present-but-blank value replaces the current one.
func field(f url.Values, key, current string) string {
	if vs, ok := f[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return current
}

// at returns the trimmed i-th element of a parallel array, or "" when the
// array is shorter.
func at(list []string, i int) string {
	if i < len(list) {
		return strings.TrimSpace(list[i])
	}
	return ""
}

// nonBlank trims every value and drops the blank ones.
func nonBlank(list []string) []string {
	out := []string{}
	for _, v := range list {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ApplySite updates the site-wide settings section.
func ApplySite(c *model.SiteContent, f url.Values) {
	s := &c.Site
	s.Name = field(f, "name", s.Name)
	s.Role = field(f, "role", s.Role)
	s.Tagline = field(f, "tagline", s.Tagline)
	s.TelegramLink = field(f, "telegram_link", s.TelegramLink)
	s.MaksLink = field(f, "maks_link", s.MaksLink)
	s.CopyrightYear = field(f, "copyright_year", s.CopyrightYear)
}

// ApplyHome updates every text section of the home page. Hero and about
// preview images are handled by the caller through the upload manager.
func ApplyHome(c *model.SiteContent, f url.Values) {
	hero := &c.Hero
	hero.Label = field(f, "hero_label", hero.Label)
	hero.Title = field(f, "hero_title", hero.Title)
	hero.Text = field(f, "hero_text", hero.Text)
	hero.CTAText = field(f, "hero_cta_text", hero.CTAText)
	hero.SecondaryCTAText = field(f, "hero_secondary_cta_text", hero.SecondaryCTAText)

	hs := &c.HelpSection
	hs.Label = field(f, "help_label", hs.Label)
	hs.Title = field(f, "help_title", hs.Title)
	hs.Items = nonBlank(f["help_items"])

	abp := &c.AboutPreview
	abp.Label = field(f, "about_preview_label", abp.Label)
	abp.Title = field(f, "about_preview_title", abp.Title)
	abp.CTAText = field(f, "about_preview_cta_text", abp.CTAText)
	abp.Paragraphs = nonBlank(f["about_preview_paragraph"])

	svp := &c.ServicesPreview
	svp.Label = field(f, "services_preview_label", svp.Label)
	svp.Title = field(f, "services_preview_title", svp.Title)
	svp.Subtitle = field(f, "services_preview_subtitle", svp.Subtitle)
	svp.CTAText = field(f, "services_preview_cta_text", svp.CTAText)
	icons := f["sp_icon"]
	titles := f["sp_title"]
	texts := f["sp_text"]
	prices := f["sp_price"]
	linkIDs := f["sp_link_id"]
	svp.Items = []model.ServicePreviewItem{}
	for i := range titles {
		if at(titles, i) == "" {
			continue
		}
		svp.Items = append(svp.Items, model.ServicePreviewItem{
			Icon:   at(icons, i),
			Title:  at(titles, i),
			Text:   at(texts, i),
			Price:  at(prices, i),
			LinkID: at(linkIDs, i),
		})
	}

	ps := &c.ProcessSteps
	ps.Label = field(f, "process_label", ps.Label)
	ps.Title = field(f, "process_title", ps.Title)
	ps.Steps = zipSteps(f["process_step_title"], f["process_step_text"])

	applyCTA(&c.CTA, f)
}

// ApplyAbout updates the about page sections.
func ApplyAbout(c *model.SiteContent, f url.Values) {
	ap := &c.AboutPage
	ap.Name = field(f, "name", ap.Name)
	ap.Role = field(f, "role", ap.Role)
	ap.IntroParagraphs = nonBlank(f["intro_paragraph"])

	approach := &ap.Approach
	approach.Label = field(f, "approach_label", approach.Label)
	approach.Title = field(f, "approach_title", approach.Title)
	approach.Subtitle = field(f, "approach_subtitle", approach.Subtitle)
	nums := f["approach_item_num"]
	titles := f["approach_item_title"]
	texts := f["approach_item_text"]
	approach.Items = []model.ApproachItem{}
	for i := range titles {
		if at(titles, i) == "" {
			continue
		}
		num := at(nums, i)
		if num == "" {
			num = strconv.Itoa(i + 1)
		}
		approach.Items = append(approach.Items, model.ApproachItem{
			Num:   num,
			Title: at(titles, i),
			Text:  at(texts, i),
		})
	}

	quals := &ap.Qualifications
	quals.Label = field(f, "quals_label", quals.Label)
	quals.Title = field(f, "quals_title", quals.Title)
	years := f["qual_item_year"]
	qTitles := f["qual_item_title"]
	descs := f["qual_item_desc"]
	n := len(years)
	if len(qTitles) > n {
		n = len(qTitles)
	}
	if len(descs) > n {
		n = len(descs)
	}
	quals.Items = []model.Qualification{}
	for i := 0; i < n; i++ {
		year, title, desc := at(years, i), at(qTitles, i), at(descs, i)
		// A qualification row survives if any of its three fields is set.
		if year != "" || title != "" || desc != "" {
			quals.Items = append(quals.Items, model.Qualification{Year: year, Title: title, Desc: desc})
		}
	}

	princ := &ap.Principles
	princ.Label = field(f, "princ_label", princ.Label)
	princ.Title = field(f, "princ_title", princ.Title)
	pIcons := f["princ_item_icon"]
	pTitles := f["princ_item_title"]
	pTexts := f["princ_item_text"]
	princ.Items = []model.Principle{}
	for i := range pTitles {
		if at(pTitles, i) == "" {
			continue
		}
		princ.Items = append(princ.Items, model.Principle{
			Icon:  at(pIcons, i),
			Title: at(pTitles, i),
			Text:  at(pTexts, i),
		})
	}

	applyCTA(&ap.CTA, f)
}

// ApplyServices rebuilds the services page from indexed svc_<i>_* field
// groups. The group count is discovered by probing svc_<i>_title presence.
func ApplyServices(c *model.SiteContent, f url.Values) {
	sp := &c.ServicesPage
	sp.Label = field(f, "page_label", sp.Label)
	sp.Title = field(f, "page_title", sp.Title)
	sp.Subtitle = field(f, "page_subtitle", sp.Subtitle)

	services := []model.Service{}
	for i := 0; ; i++ {
		prefix := "svc_" + strconv.Itoa(i) + "_"
		if _, ok := f[prefix+"title"]; !ok {
			break
		}
		svc := model.Service{
			ID:         strings.TrimSpace(f.Get(prefix + "id")),
			Title:      strings.TrimSpace(f.Get(prefix + "title")),
			Desc:       strings.TrimSpace(f.Get(prefix + "desc")),
			Icon:       strings.TrimSpace(f.Get(prefix + "icon")),
			Duration:   strings.TrimSpace(f.Get(prefix + "duration")),
			Format:     strings.TrimSpace(f.Get(prefix + "format")),
			ForWhom:    strings.TrimSpace(f.Get(prefix + "for_whom")),
			Highlights: nonBlank(f[prefix+"highlight"]),
			Paragraphs: nonBlank(f[prefix+"paragraph"]),
			ListTitle:  strings.TrimSpace(f.Get(prefix + "list_title")),
			ListItems:  nonBlank(f[prefix+"list_item"]),
		}
		labels := f[prefix+"price_label"]
		values := f[prefix+"price_value"]
		n := len(labels)
		if len(values) < n {
			n = len(values)
		}
		svc.Prices = []model.Price{}
		for j := 0; j < n; j++ {
			label, value := at(labels, j), at(values, j)
			// Keep the row if either half of the pair is non-blank.
			if label != "" || value != "" {
				svc.Prices = append(svc.Prices, model.Price{Label: label, Value: value})
			}
		}
		services = append(services, svc)
	}
	sp.Services = services

	applyCTA(&sp.CTA, f)
}

// ApplyContact updates the contact page.
func ApplyContact(c *model.SiteContent, f url.Values) {
	cp := &c.ContactPage
	cp.Label = field(f, "label", cp.Label)
	cp.Title = field(f, "title", cp.Title)
	cp.Subtitle = field(f, "subtitle", cp.Subtitle)

	proc := &cp.Process
	proc.Label = field(f, "process_label", proc.Label)
	proc.Title = field(f, "process_title", proc.Title)
	proc.Steps = zipSteps(f["step_title"], f["step_text"])

	applyCTA(&cp.CTA, f)
}

// ApplyArticlesCTA updates the call-to-action shown under article listings.
func ApplyArticlesCTA(c *model.SiteContent, f url.Values) {
	applyCTA(&c.ArticlesCTA, f)
}

// ApplyDocuments rebuilds the documents page list: existing entries are
// reordered by their declared positional ids, entries named in delete_doc
// are dropped (checked against both the declared id and the post-filter
// index, matching the historical behavior) and new uploads are appended.
// removeUpload is called for the image of every deleted entry.
func ApplyDocuments(dp *model.DocumentsPage, f url.Values, newDocs []model.Doc, removeUpload func(string)) {
	dp.Title = strings.TrimSpace(field(f, "title", dp.Title))
	dp.Subtitle = strings.TrimSpace(field(f, "subtitle", dp.Subtitle))
	dp.ButtonText = strings.TrimSpace(field(f, "button_text", dp.ButtonText))

	existingIDs := f["doc_id"]
	existingTitles := f["doc_title"]
	oldByID := make(map[string]model.Doc, len(dp.Docs))
	for i, d := range dp.Docs {
		oldByID[strconv.Itoa(i)] = d
	}

	// Reorder and retitle surviving entries.
	items := []model.Doc{}
	for idx, id := range existingIDs {
		d, ok := oldByID[id]
		if !ok {
			continue
		}
		if idx < len(existingTitles) {
			d.Title = strings.TrimSpace(existingTitles[idx])
		}
		items = append(items, d)
	}

	deleteIDs := map[string]bool{}
	for _, id := range f["delete_doc"] {
		deleteIDs[id] = true
	}
	for id := range deleteIDs {
		if d, ok := oldByID[id]; ok {
			removeUpload(d.Image)
		}
	}
	kept := []model.Doc{}
	for i, d := range items {
		declared := ""
		if i < len(existingIDs) {
			declared = existingIDs[i]
		}
		if deleteIDs[strconv.Itoa(i)] || deleteIDs[declared] {
			continue
		}
		kept = append(kept, d)
	}

	dp.Docs = append(kept, newDocs...)
}

func applyCTA(cta *model.CTA, f url.Values) {
	cta.Title = field(f, "cta_title", cta.Title)
	cta.Text = field(f, "cta_text", cta.Text)
	cta.ButtonText = field(f, "cta_button_text", cta.ButtonText)
}

func zipSteps(titles, texts []string) []model.Step {
	steps := []model.Step{}
	for i := range titles {
		if at(titles, i) == "" {
			continue
		}
		steps = append(steps, model.Step{Title: at(titles, i), Text: at(texts, i)})
	}
	return steps
}
