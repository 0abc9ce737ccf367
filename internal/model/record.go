package model

import "time"

// Article is a blog article persisted in articles.json, identified by slug.
type Article struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// Announcement is an event announcement persisted in announcements.json.
type Announcement struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Published   bool   `json:"published"`
}

// Deploy run results.
const (
	DeployResultSuccess = "success"
	DeployResultError   = "error"
)

// DeployRun is one recorded invocation of the export-commit-push workflow.
type DeployRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Result     string    `json:"result"`
	Log        string    `json:"log"`
}
