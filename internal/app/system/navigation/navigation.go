// internal/app/system/navigation/navigation.go
package navigation

import "strings"

// Item is one link of a navigation menu.
type Item struct {
	Title     string
	Href      string
	AdminOnly bool
	Active    bool
}

// Public is the menu of the public site.
var Public = []Item{
	{Title: "Accueil", Href: "/"},
	{Title: "Organigramme", Href: "/organigramme"},
	{Title: "Économie", Href: "/economie"},
	{Title: "Affaires étrangères", Href: "/p/affaires-etrangeres"},
	{Title: "Événements", Href: "/p/evenements"},
	{Title: "Actualités", Href: "/p/actualites"},
	{Title: "Justice", Href: "/p/justice"},
	{Title: "Contact", Href: "/p/contact"},
	{Title: "Newsletter", Href: "/newsletter"},
}

// Intranet is the menu shown to signed-in users.
var Intranet = []Item{
	{Title: "Tableau de bord", Href: "/intranet"},
	{Title: "Édition de contenu", Href: "/intranet/edition"},
	{Title: "Organigramme", Href: "/intranet/organigramme"},
	{Title: "To-Do List", Href: "/intranet/todo"},
	{Title: "Agenda", Href: "/intranet/agenda"},
	{Title: "Ressources", Href: "/intranet/ressources"},
	{Title: "Formulaires", Href: "/intranet/formulaires"},
	{Title: "Newsletter", Href: "/intranet/newsletter"},
	{Title: "Abonnés", Href: "/intranet/newsletter/abonnes", AdminOnly: true},
	{Title: "Utilisateurs", Href: "/intranet/admin/utilisateurs", AdminOnly: true},
	{Title: "Discord", Href: "/intranet/admin/discord", AdminOnly: true},
	{Title: "Journal", Href: "/intranet/admin/journal", AdminOnly: true},
}

// IntranetFor returns the intranet menu filtered for the user's role.
func IntranetFor(isAdmin bool) []Item {
	out := make([]Item, 0, len(Intranet))
	for _, it := range Intranet {
		if it.AdminOnly && !isAdmin {
			continue
		}
		out = append(out, it)
	}
	return out
}

// IsActive reports whether href is the current section for path. The root
// of a menu only matches itself.
func IsActive(href, path string) bool {
	if href == "/" || href == "/intranet" {
		return path == href
	}
	return path == href || strings.HasPrefix(path, href+"/")
}

// Mark returns a copy of items with Active set for the entry matching path.
func Mark(items []Item, path string) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Active = IsActive(it.Href, path)
		out[i] = it
	}
	return out
}
