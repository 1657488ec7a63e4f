// internal/app/features/resources/resourcetypes.go
package resources

import (
	resourcestore "github.com/dalemusser/sagov/internal/app/store/resources"
)

// ResourceTypeOption is one entry of the type selector.
type ResourceTypeOption struct {
	ID    string
	Label string
}

var typeLabels = map[string]string{
	"document": "Document",
	"form":     "Formulaire",
	"link":     "Lien",
	"video":    "Vidéo",
}

// resourceTypeOptions returns the canonical list of resource types as
// ID/Label pairs for use in templates.
func resourceTypeOptions() []ResourceTypeOption {
	opts := make([]ResourceTypeOption, 0, len(resourcestore.Types))
	for _, id := range resourcestore.Types {
		label, ok := typeLabels[id]
		if !ok {
			label = id
		}
		opts = append(opts, ResourceTypeOption{ID: id, Label: label})
	}
	return opts
}

func typeLabel(id string) string {
	if l, ok := typeLabels[id]; ok {
		return l
	}
	return id
}
