package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"cellar/app/models"
	"cellar/app/session"
	"cellar/global"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data is what every page template receives.
type Data struct {
	Title     string
	SiteTitle string
	User      *models.User
	Flashes   []session.Flash
	// Token carries the reset token through to the reset form.
	Token string
	// Return is the post-login redirect target.
	Return string
	Year   string
}

// Renderer holds one template set per page, each paired with the shared
// layout.
type Renderer struct {
	pages     map[string]*template.Template
	siteTitle string
}

var pageNames = []string{"home", "dashboard", "login", "register", "forgot", "reset", "admin", "error"}

func New(siteTitle string) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, siteTitle: siteTitle}, nil
}

func yearRange() string {
	const startYear = 2017
	year := time.Now().Year()
	if year == startYear {
		return fmt.Sprintf("%d", startYear)
	}
	return fmt.Sprintf("%d - %d", startYear, year)
}

// Render writes the named page. Template failures log and fall back to a
// bare 500; internal detail never reaches the client.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) {
	t, ok := r.pages[name]
	if !ok {
		global.Logger.Error().Str("page", name).Msg("unknown template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if data.SiteTitle == "" {
		data.SiteTitle = r.siteTitle
	}
	data.Year = yearRange()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		global.Logger.Error().Err(err).Str("page", name).Msg("render failed")
	}
}
