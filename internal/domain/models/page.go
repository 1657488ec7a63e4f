// internal/domain/models/page.go
package models

import "time"

// Well-known page slugs.
const (
	PageHome     = "accueil"
	PageOrgChart = "organigramme"
	PageEconomy  = "economie"
	PageForms    = "formulaires" // intranet only
)

// Section image placement and size values.
const (
	ImageLeft  = "left"
	ImageRight = "right"
	ImageNone  = "none"

	ImageSmall  = "small"
	ImageMedium = "medium"
	ImageLarge  = "large"
)

// PageContent is the document stored per slug in the site_content collection.
// The whole page (sections, buttons, org chart, economic table) is one document
// and is always written back as a unit.
type PageContent struct {
	Slug           string         `bson:"slug" json:"slug"`
	Title          string         `bson:"title" json:"title"`
	Content        string         `bson:"content" json:"content"`
	Images         []string       `bson:"images" json:"images"`
	Sections       []PageSection  `bson:"sections" json:"sections"`
	Buttons        []PageButton   `bson:"buttons" json:"buttons"`
	CarouselImages []string       `bson:"carousel_images,omitempty" json:"carouselImages,omitempty"`
	OrgMembers     []OrgMember    `bson:"org_members,omitempty" json:"orgMembers,omitempty"`
	EconomicData   []EconomicData `bson:"economic_data,omitempty" json:"economicData,omitempty"`

	UpdatedAt     *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedByName string     `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}

// PageSection is a titled block of content with an optional illustration.
type PageSection struct {
	ID            string `bson:"id" json:"id"`
	Title         string `bson:"title" json:"title"`
	Content       string `bson:"content" json:"content"`
	Image         string `bson:"image,omitempty" json:"image,omitempty"`
	ImagePosition string `bson:"image_position" json:"imagePosition"` // left | right | none
	ImageSize     string `bson:"image_size" json:"imageSize"`         // small | medium | large
}

// PageButton is a call-to-action link, optionally attached to a section.
type PageButton struct {
	ID        string `bson:"id" json:"id"`
	Label     string `bson:"label" json:"label"`
	URL       string `bson:"url" json:"url"`
	Color     string `bson:"color" json:"color"`
	SectionID string `bson:"section_id,omitempty" json:"sectionId,omitempty"`
	Order     int    `bson:"order" json:"order"`
}

// OrgMember is one node of the organization chart. Level is derived from the
// parent chain and Order sequences siblings sharing (ParentID, Level).
type OrgMember struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Position string `bson:"position" json:"position"`
	Photo    string `bson:"photo,omitempty" json:"photo,omitempty"`
	ParentID string `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	Level    int    `bson:"level" json:"level"`
	Order    int    `bson:"order" json:"order"`
}

// HasParent reports whether the member sits below another member.
func (m OrgMember) HasParent() bool {
	return m.ParentID != ""
}

// EconomicData is one weekly row of the public budget table.
type EconomicData struct {
	ID       string  `bson:"id" json:"id"`
	Week     string  `bson:"week" json:"week"`
	Revenues float64 `bson:"revenues" json:"revenues"`
	Expenses float64 `bson:"expenses" json:"expenses"`
}

// Balance is revenues minus expenses.
func (e EconomicData) Balance() float64 {
	return e.Revenues - e.Expenses
}
