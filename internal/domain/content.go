package domain

import (
	"time"
)

// ContentType identifies one editable content document of the site.
type ContentType string

const (
	ContentProfile      ContentType = "profile"
	ContentCompetencies ContentType = "competencies"
	ContentProjects     ContentType = "projects"
	ContentExperiences  ContentType = "experiences"
	ContentSettings     ContentType = "settings"
)

// ContentTypes lists every document the hybrid manager routes.
var ContentTypes = []ContentType{
	ContentProfile,
	ContentCompetencies,
	ContentProjects,
	ContentExperiences,
	ContentSettings,
}

// IsValid reports whether ct names a known content document.
func (ct ContentType) IsValid() bool {
	for _, known := range ContentTypes {
		if ct == known {
			return true
		}
	}
	return false
}

// Profile is the hero/about section of the site.
type Profile struct {
	Name      string `json:"name"`
	Headline  string `json:"headline"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Competency is one skill entry with a self-assessed level.
type Competency struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Level    int    `json:"level"`
}

// Project is one portfolio project card.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
	RepoURL      string   `json:"repo_url,omitempty"`
	LiveURL      string   `json:"live_url,omitempty"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Featured     bool     `json:"featured"`
}

// Experience is one work/education history entry.
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description"`
}

// SiteSettings holds site-wide toggles edited from the admin dashboard.
type SiteSettings struct {
	ShowGuestbook    bool   `json:"show_guestbook"`
	ShowVisitorBadge bool   `json:"show_visitor_badge"`
	AccentColor      string `json:"accent_color,omitempty"`
	Language         string `json:"language,omitempty"`
}

// GuestbookEntry is one message left by a site visitor.
type GuestbookEntry struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
