// Package web serves the single editing page.
package web

import (
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/middlewares"
	"career-ebook-generator/internal/models"
	"embed"
	"github.com/gin-gonic/gin"
	"html/template"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const IndexTemplate = "index.html.tmpl"

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// Api defines the page endpoint.
type Api interface {
	Index(c *gin.Context)
}

// Controller renders the page for the current session.
type Controller struct {
	*environment.Env

	// ConfigError, when set, replaces the generator with an error notice.
	ConfigError      error
	Editor           string
	Model            string
	ConvertEnabled   bool
	ExportExtension  string
	PasscodeRequired bool
	SigningKey       []byte
}

// ensure Controller implements Api
var _ Api = &Controller{}

type page struct {
	ConfigError      string
	Editor           string
	Model            string
	Year             int
	ConvertEnabled   bool
	FormatLabel      string
	PasscodeRequired bool
	SessionActive    bool
	CommunityName    string
	Document         string
	Generated        bool
	Converted        bool
}

// Index renders the page, pre-filled with the session's document when the request
// carries a live session cookie.
func (pc *Controller) Index(c *gin.Context) {
	p := page{
		Editor:           pc.Editor,
		Model:            pc.Model,
		Year:             time.Now().Year(),
		ConvertEnabled:   pc.ConvertEnabled,
		FormatLabel:      FormatLabel(pc.ExportExtension),
		PasscodeRequired: pc.PasscodeRequired,
	}

	status := http.StatusOK
	if pc.ConfigError != nil {
		p.ConfigError = pc.ConfigError.Error()
		status = http.StatusServiceUnavailable
	}

	if sessionId := middlewares.SessionFromCookie(c, pc.SigningKey); len(sessionId) > 0 {
		session := models.Session{}
		if err := pc.FindSession(c.Request.Context(), sessionId, &session); err == nil {
			p.SessionActive = true
			p.CommunityName = session.CommunityName
			p.Document = session.Document
			p.Generated = session.HasDocument()
			p.Converted = session.HasConverted()
		} else {
			pc.LogDebugf(logging.GetLogTypeSession("page", sessionId), "stale session cookie: %v", err)
		}
	}

	c.HTML(status, IndexTemplate, p)
}

// FormatLabel names the fixed-layout format for buttons, e.g. "pdf" becomes "PDF".
func FormatLabel(extension string) string {
	label := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(extension), "."))
	if len(label) == 0 {
		return "document"
	}
	return label
}
