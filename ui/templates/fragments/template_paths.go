// Package fragments provides template path constants for the review UI
package fragments

import "strings"

// Template path constants, relative to ui/templates
const (
	IndexPage = "index.html"

	// Grid templates
	GridView    = "grid/grid.html"
	CardView    = "grid/card.html"
	LoadingView = "grid/loading.html"

	// Layout templates
	GuidePanel = "layout/guide.html"
)

// GetAllTemplatePaths returns all template paths for registration
func GetAllTemplatePaths() []string {
	return []string{
		IndexPage,

		// Grid
		GridView,
		CardView,
		LoadingView,

		// Layout
		GuidePanel,
	}
}

// GetTemplateCategory returns the category for a given template path
func GetTemplateCategory(templatePath string) string {
	switch {
	case strings.HasPrefix(templatePath, "grid/"):
		return "grid"
	case strings.HasPrefix(templatePath, "layout/"):
		return "layout"
	case !strings.Contains(templatePath, "/"):
		return "page"
	default:
		return "unknown"
	}
}
