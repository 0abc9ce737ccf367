// Package model defines shared data structures.
package model

// SiteContent is the full editable content tree for the public pages.
// Field names mirror the keys of content.json.
type SiteContent struct {
	Site            SiteSettings    `json:"site"`
	Hero            Hero            `json:"hero"`
	HelpSection     HelpSection     `json:"help_section"`
	AboutPreview    AboutPreview    `json:"about_preview"`
	ServicesPreview ServicesPreview `json:"services_preview"`
	ProcessSteps    ProcessSteps    `json:"process_steps"`
	CTA             CTA             `json:"cta"`
	AboutPage       AboutPage       `json:"about_page"`
	ServicesPage    ServicesPage    `json:"services_page"`
	ContactPage     ContactPage     `json:"contact_page"`
	ArticlesCTA     CTA             `json:"articles_cta"`
	DocumentsPage   DocumentsPage   `json:"documents_page"`
}

// Normalize fills in defaults for sections that older documents may lack,
// so handlers never have to guard against missing keys.
func (c *SiteContent) Normalize() {
	if c.DocumentsPage.Title == "" && len(c.DocumentsPage.Docs) == 0 {
		c.DocumentsPage = DocumentsPage{
			Title:      "Документы и сертификаты",
			ButtonText: "Смотреть документы",
		}
	}
	if c.DocumentsPage.Docs == nil {
		c.DocumentsPage.Docs = []Doc{}
	}
	if c.HelpSection.Items == nil {
		c.HelpSection.Items = []string{}
	}
	if c.AboutPreview.Paragraphs == nil {
		c.AboutPreview.Paragraphs = []string{}
	}
	if c.ServicesPreview.Items == nil {
		c.ServicesPreview.Items = []ServicePreviewItem{}
	}
	if c.ProcessSteps.Steps == nil {
		c.ProcessSteps.Steps = []Step{}
	}
	if c.AboutPage.IntroParagraphs == nil {
		c.AboutPage.IntroParagraphs = []string{}
	}
	if c.ServicesPage.Services == nil {
		c.ServicesPage.Services = []Service{}
	}
	if c.ContactPage.Process.Steps == nil {
		c.ContactPage.Process.Steps = []Step{}
	}
}

// SiteSettings holds site-wide metadata rendered on every page.
type SiteSettings struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Tagline       string `json:"tagline"`
	TelegramLink  string `json:"telegram_link"`
	MaksLink      string `json:"maks_link"`
	CopyrightYear string `json:"copyright_year"`
}

// Hero is the home page hero block.
type Hero struct {
	Label            string `json:"label"`
	Title            string `json:"title"`
	Text             string `json:"text"`
	CTAText          string `json:"cta_text"`
	SecondaryCTAText string `json:"secondary_cta_text"`
	Image            string `json:"image"`
}

// HelpSection is the "how I can help" list on the home page.
type HelpSection struct {
	Label string   `json:"label"`
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// AboutPreview is the short about teaser on the home page.
type AboutPreview struct {
	Label      string   `json:"label"`
	Title      string   `json:"title"`
	CTAText    string   `json:"cta_text"`
	Paragraphs []string `json:"paragraphs"`
	Image      string   `json:"image"`
}

// ServicePreviewItem is one card in the home page services teaser.
type ServicePreviewItem struct {
	Icon   string `json:"icon"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Price  string `json:"price"`
	LinkID string `json:"link_id"`
}

// ServicesPreview is the services teaser on the home page.
type ServicesPreview struct {
	Label    string               `json:"label"`
	Title    string               `json:"title"`
	Subtitle string               `json:"subtitle"`
	CTAText  string               `json:"cta_text"`
	Items    []ServicePreviewItem `json:"items"`
}

// Step is a titled text block used by process sections.
type Step struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ProcessSteps is an ordered list of steps with a heading.
type ProcessSteps struct {
	Label string `json:"label"`
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// CTA is a call-to-action block.
type CTA struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	ButtonText string `json:"button_text"`
}

// ApproachItem is a numbered item in the about page approach section.
type ApproachItem struct {
	Num   string `json:"num"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Approach is the about page approach section.
type Approach struct {
	Label    string         `json:"label"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Items    []ApproachItem `json:"items"`
}

// Qualification is one entry in the qualifications timeline.
type Qualification struct {
	Year  string `json:"year"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// Qualifications is the about page qualifications section.
type Qualifications struct {
	Label string          `json:"label"`
	Title string          `json:"title"`
	Items []Qualification `json:"items"`
}

// Principle is one card in the principles section.
type Principle struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Principles is the about page principles section.
type Principles struct {
	Label string      `json:"label"`
	Title string      `json:"title"`
	Items []Principle `json:"items"`
}

// AboutPage is the full about page.
type AboutPage struct {
	Image           string         `json:"image"`
	Name            string         `json:"name"`
	Role            string         `json:"role"`
	IntroParagraphs []string       `json:"intro_paragraphs"`
	Approach        Approach       `json:"approach"`
	Qualifications  Qualifications `json:"qualifications"`
	Principles      Principles     `json:"principles"`
	CTA             CTA            `json:"cta"`
}

// Price is a label/value pair on a service card.
type Price struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Service is one full service description on the services page.
type Service struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Desc       string   `json:"desc"`
	Icon       string   `json:"icon"`
	Duration   string   `json:"duration"`
	Format     string   `json:"format"`
	ForWhom    string   `json:"for_whom"`
	Highlights []string `json:"highlights"`
	Paragraphs []string `json:"paragraphs"`
	ListTitle  string   `json:"list_title"`
	ListItems  []string `json:"list_items"`
	Prices     []Price  `json:"prices"`
}

// ServicesPage is the full services page.
type ServicesPage struct {
	Label    string    `json:"label"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Services []Service `json:"services"`
	CTA      CTA       `json:"cta"`
}

// ContactPage is the contact page.
type ContactPage struct {
	Label    string       `json:"label"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Process  ProcessSteps `json:"process"`
	CTA      CTA          `json:"cta"`
}

// Doc is one document/certificate entry on the documents page.
type Doc struct {
	Image string `json:"image"`
	Title string `json:"title"`
}

// DocumentsPage is the documents page.
type DocumentsPage struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ButtonText string `json:"button_text"`
	Docs       []Doc  `json:"docs"`
}
