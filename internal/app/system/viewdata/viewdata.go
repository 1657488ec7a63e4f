// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is used until Init sets the configured name.
const DefaultSiteName = "Gouvernement de San Andreas"

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
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string
	Year     int

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Menus
	PublicNav   []navigation.Item
	IntranetNav []navigation.Item

	// CSRF protection
	CSRFToken string

	// Flash is a one-line notice carried in the "ok" query parameter after a
	// successful POST/redirect.
	Flash string
}

var (
	mu       sync.RWMutex
	siteName = DefaultSiteName
)

// Init sets the site name shown in every page header. Call once at startup.
func Init(name string) {
	if name == "" {
		return
	}
	mu.Lock()
	siteName = name
	mu.Unlock()
}

// SiteName returns the configured site name.
func SiteName() string {
	mu.RLock()
	defer mu.RUnlock()
	return siteName
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	isAdmin := authz.IsAdmin(r)

	vm := BaseVM{
		SiteName:    SiteName(),
		Year:        time.Now().Year(),
		IsLoggedIn:  signedIn,
		IsAdmin:     isAdmin,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		PublicNav:   navigation.Mark(navigation.Public, httpnav.CurrentPath(r)),
		CSRFToken:   csrf.Token(r),
		Flash:       flashMessages[r.URL.Query().Get("ok")],
	}
	if signedIn {
		vm.IntranetNav = navigation.Mark(navigation.IntranetFor(isAdmin), vm.CurrentPath)
	}
	return vm
}

// flashMessages maps the "ok" redirect codes to the notice shown.
var flashMessages = map[string]string{
	"saved":        "Modifications enregistrées.",
	"created":      "Élément créé.",
	"deleted":      "Élément supprimé.",
	"subscribed":   "Inscription enregistrée. Vous recevrez les prochaines newsletters sur Discord.",
	"unsubscribed": "Désinscription effectuée.",
}

// Redirect sends a 303 to path with the flash code appended.
func Redirect(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "ok=" + flash
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
