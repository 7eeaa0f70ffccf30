package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"spikereview/ui/templates/fragments"

	"github.com/gin-gonic/gin"
)

// parseTemplates loads every registered template from files, named by its
// path under ui/templates
func parseTemplates(files fs.FS) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "ui/templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	templates := template.New("")
	for _, name := range fragments.GetAllTemplatePaths() {
		content, err := fs.ReadFile(templatesFS, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err := templates.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s template %s: %w", fragments.GetTemplateCategory(name), name, err)
		}
	}
	return templates, nil
}

// renderTemplate executes a template into a buffer first so errors never
// produce a half-written response
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("[UI] Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("[UI] Error writing template response: %v", err)
	}
}
