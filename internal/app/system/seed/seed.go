// internal/app/system/seed/seed.go
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type PageSeed struct {
	Slug           string        `yaml:"slug"`
	Title          string        `yaml:"title"`
	Content        string        `yaml:"content"`
	CarouselImages []string      `yaml:"carousel_images"`
	Sections       []SectionSeed `yaml:"sections"`
}

// SectionSeed is a text block with an optional call-to-action button.
type SectionSeed struct {
	Title       string `yaml:"title"`
	Content     string `yaml:"content"`
	ButtonLabel string `yaml:"button_label"`
	ButtonURL   string `yaml:"button_url"`
}

// Content is the parsed seed document.
type Content struct {
	Pages []PageSeed `yaml:"pages"`
}

// Parse decodes a seed document.
func Parse(data []byte) (Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("parse seed content: %w", err)
	}
	for i, p := range c.Pages {
		if !pagestore.ValidSlug(p.Slug) {
			return Content{}, fmt.Errorf("seed page %d: %w", i, pagestore.ErrInvalidSlug)
		}
	}
	return c, nil
}

// Default returns the embedded seed document.
func Default() (Content, error) {
	return Parse(defaultContent)
}

// Page converts a seed entry into a stored page with every list non-nil.
func (p PageSeed) Page() models.PageContent {
	page := models.PageContent{
		Slug:           p.Slug,
		Title:          p.Title,
		Content:        p.Content,
		Images:         []string{},
		Sections:       []models.PageSection{},
		Buttons:        []models.PageButton{},
		CarouselImages: p.CarouselImages,
		UpdatedByName:  "system",
	}
	for _, s := range p.Sections {
		sec := models.PageSection{
			ID:            uuid.NewString(),
			Title:         s.Title,
			Content:       s.Content,
			ImagePosition: models.ImageNone,
			ImageSize:     models.ImageMedium,
		}
		page.Sections = append(page.Sections, sec)
		if s.ButtonURL != "" {
			page.Buttons = append(page.Buttons, models.PageButton{
				ID:        uuid.NewString(),
				Label:     s.ButtonLabel,
				URL:       s.ButtonURL,
				Color:     pageedit.DefaultButtonColor,
				SectionID: sec.ID,
				Order:     len(page.Buttons),
			})
		}
	}
	switch p.Slug {
	case models.PageOrgChart:
		page.OrgMembers = []models.OrgMember{}
	case models.PageEconomy:
		page.EconomicData = []models.EconomicData{}
	}
	return page
}

// Pages inserts every page of c that does not exist yet and returns how many
// were created.
func Pages(ctx context.Context, db *mongo.Database, c Content, logger *zap.Logger) (int, error) {
	store := pagestore.New(db)
	created := 0
	for _, p := range c.Pages {
		ok, err := store.InsertIfMissing(ctx, p.Page())
		if err != nil {
			return created, fmt.Errorf("seed page %q: %w", p.Slug, err)
		}
		if ok {
			created++
			logger.Info("seeded page", zap.String("slug", p.Slug))
		}
	}
	return created, nil
}

// Admin creates the first admin account when no admin exists. A blank
// username or password disables it. It reports whether an account was
// created.
func Admin(ctx context.Context, db *mongo.Database, username, password string, logger *zap.Logger) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	store := userstore.New(db)
	n, err := store.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	_, err = store.Create(ctx, models.User{Username: username, Password: password, Role: models.RoleAdmin})
	if errors.Is(err, userstore.ErrDuplicateUsername) {
		logger.Warn("seed admin skipped: username taken by a non-admin account", zap.String("username", username))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("seeded admin account", zap.String("username", username))
	return true, nil
}
