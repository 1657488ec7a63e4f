// internal/app/features/todo/templates.go
package todo

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "todo",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
