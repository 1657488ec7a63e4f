// internal/app/features/discordadmin/templates.go
package discordadmin

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "discordadmin",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
