// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
)

// listItem is one journal row.
type listItem struct {
	When      string
	Category  string
	EventType string
	Label     string
	Actor     string
	Target    string
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// listData is the view model for the journal page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	Categories []option
	EventTypes []option

	// Pagination
	Total      int64
	RangeStart int
	RangeEnd   int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

type option struct {
	Value string
	Label string
}

var categoryLabels = []option{
	{Value: audit.CategoryAuth, Label: "Connexions"},
	{Value: audit.CategoryAdmin, Label: "Administration"},
	{Value: audit.CategoryNewsletter, Label: "Newsletter"},
}

var eventsByCategory = map[string][]option{
	audit.CategoryAuth: {
		{Value: audit.EventLoginSuccess, Label: "Connexion"},
		{Value: audit.EventLoginFailed, Label: "Échec de connexion"},
		{Value: audit.EventLoginRateLimited, Label: "Connexion bloquée (trop de tentatives)"},
		{Value: audit.EventLogout, Label: "Déconnexion"},
	},
	audit.CategoryAdmin: {
		{Value: audit.EventUserCreated, Label: "Compte créé"},
		{Value: audit.EventUserDeleted, Label: "Compte supprimé"},
		{Value: audit.EventDiscordConfigChanged, Label: "Configuration Discord modifiée"},
		{Value: audit.EventSubscriberAdded, Label: "Abonné ajouté"},
		{Value: audit.EventSubscriberRemoved, Label: "Abonné retiré"},
		{Value: audit.EventSubscribersImported, Label: "Abonnés importés"},
	},
	audit.CategoryNewsletter: {
		{Value: audit.EventNewsletterSent, Label: "Newsletter envoyée"},
		{Value: audit.EventNewsletterFailed, Label: "Envoi refusé"},
	},
}

// eventTypesFor returns the event types of category, or every type when
// category is empty or unknown.
func eventTypesFor(category string) []option {
	if opts, ok := eventsByCategory[category]; ok {
		return opts
	}
	var all []option
	for _, c := range categoryLabels {
		all = append(all, eventsByCategory[c.Value]...)
	}
	return all
}

func eventLabel(eventType string) string {
	for _, opts := range eventsByCategory {
		for _, o := range opts {
			if o.Value == eventType {
				return o.Label
			}
		}
	}
	return eventType
}
