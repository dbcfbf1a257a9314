// Package storefront is the public read view: one fetch on load, then
// purely local category filtering and bilingual free-text search. It has no
// mutation capability.
package storefront

import (
	"context"
	"strings"

	"github.com/karwan-dev/cafe-menu/client"
	"github.com/karwan-dev/cafe-menu/models"
)

// AllCategories disables the category filter.
const AllCategories = "all"

type View struct {
	api   *client.Client
	items []models.MenuItem
}

func NewView(api *client.Client) *View {
	return &View{api: api}
}

// Load fetches the full item list once.
func (v *View) Load(ctx context.Context) error {
	items, err := v.api.ListItems(ctx)
	if err != nil {
		return err
	}
	v.items = items
	return nil
}

func (v *View) Items() []models.MenuItem {
	return v.items
}

// Filter narrows the loaded items by category and a case-insensitive
// substring query matched against title and description in both languages.
// Which field matched is irrelevant; there is no ranking.
func (v *View) Filter(category, query string) []models.MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []models.MenuItem
	for _, item := range v.items {
		cat := item.Category
		if cat == "" {
			cat = models.DefaultCategory
		}
		if category != AllCategories && category != "" && cat != category {
			continue
		}
		if q != "" && !matches(item, q) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(item models.MenuItem, q string) bool {
	return strings.Contains(strings.ToLower(item.Title), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.TitleKurdish), q) ||
		strings.Contains(strings.ToLower(item.DescriptionKurdish), q)
}

// DisplayTitle returns the Kurdish title when asked for and present,
// falling back to the English one.
func DisplayTitle(item models.MenuItem, kurdish bool) string {
	if kurdish && item.TitleKurdish != "" {
		return item.TitleKurdish
	}
	return item.Title
}

// DisplayDescription mirrors DisplayTitle for descriptions.
func DisplayDescription(item models.MenuItem, kurdish bool) string {
	if kurdish && item.DescriptionKurdish != "" {
		return item.DescriptionKurdish
	}
	return item.Description
}

// compound category tags that need spacing before display
var categoryNames = map[string]string{
	"icecoffee":   "Ice Coffee",
	"hotdrinks":   "Hot Drinks",
	"freshdrinks": "Fresh Drinks",
	"milkshake":   "Milk Shake",
}

// FormatCategoryName turns a category tag into a display label: known
// compound tags get proper spacing and anything else is capitalized as-is.
func FormatCategoryName(category string) string {
	if name, ok := categoryNames[strings.ToLower(category)]; ok {
		return name
	}
	if category == "" {
		return ""
	}
	return strings.ToUpper(category[:1]) + category[1:]
}
