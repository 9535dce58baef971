package link

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/denchenko/pa/internal/core/domain"
)

// Linker generates browser URLs for posts.
type Linker struct {
	urlTemplate *template.Template
}

// NewLinker creates a new Linker with the given URL template. The template
// sees the post's ID, Title and UserID.
func NewLinker(urlTemplate string) (*Linker, error) {
	if urlTemplate == "" {
		return &Linker{}, nil
	}

	tmpl, err := template.New("postURL").Option("missingkey=error").Parse(urlTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse post URL template: %w", err)
	}

	return &Linker{urlTemplate: tmpl}, nil
}

// Configured reports whether a URL template was given.
func (l *Linker) Configured() bool {
	return l.urlTemplate != nil
}

// MakeURL generates the URL of a post, or an empty string without a template.
func (l *Linker) MakeURL(p domain.Post) (string, error) {
	if l.urlTemplate == nil {
		return "", nil
	}

	var buf bytes.Buffer
	data := struct {
		ID     int
		Title  string
		UserID int
	}{
		ID:     p.ID,
		Title:  p.Title,
		UserID: p.UserID,
	}

	if err := l.urlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute post URL template: %w", err)
	}

	return buf.String(), nil
}
