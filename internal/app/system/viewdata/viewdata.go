// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"
	"sync"

	"github.com/dalemusser/sofischeduler/internal/app/system/flash"
	"github.com/dalemusser/sofischeduler/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/"),
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Nav         []NavItem

	// CSRF protection
	CSRFToken string

	Flashes []flash.Message
}

var (
	mu       sync.RWMutex
	siteName = models.DefaultSiteName
	flashes  *flash.Manager
)

// Init sets the site name and flash manager. Call once at startup from
// bootstrap. A nil manager disables flashes.
func Init(name string, fm *flash.Manager) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(name) != "" {
		siteName = name
	}
	flashes = fm
}

// Flashes returns the flash manager set by Init.
func Flashes() *flash.Manager {
	mu.RLock()
	defer mu.RUnlock()
	return flashes
}

var navItems = []NavItem{
	{Label: "Home", Href: "/"},
	{Label: "Dashboard", Href: "/dashboard"},
	{Label: "Overview", Href: "/overview"},
	{Label: "Upload", Href: "/upload"},
}

// NewBaseVM creates a fully populated BaseVM for a page. Pending flash
// messages are consumed, so call it before anything is written to w.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	mu.RLock()
	name, fm := siteName, flashes
	mu.RUnlock()

	cur := httpnav.CurrentPath(r)
	return BaseVM{
		SiteName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: cur,
		Nav:         Nav(r.URL.Path),
		CSRFToken:   csrf.Token(r),
		Flashes:     fm.Pop(w, r),
	}
}

// Nav returns the navigation with the entry for path marked active.
func Nav(path string) []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	for i := range out {
		href := out[i].Href
		if href == "/" {
			out[i].Active = path == "/"
			continue
		}
		out[i].Active = path == href || strings.HasPrefix(path, href+"/")
	}
	return out
}
