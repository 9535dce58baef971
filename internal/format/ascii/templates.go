package ascii

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/state"
)

const (
	unknownAuthor    = "unknown"
	titleMaxLen      = 80
	titleTrunc       = 77
	boxWidth         = 100
	boxTitlePadding  = 5
	boxBottomPadding = 2
	bodyWidth        = boxWidth - 4
)

var (
	//go:embed posts.tmpl
	postsTemplate string

	//go:embed post_detail.tmpl
	postDetailTemplate string

	//go:embed tags.tmpl
	tagsTemplate string

	//go:embed user.tmpl
	userTemplate string
)

// PostsData holds data for the post list template.
type PostsData struct {
	View domain.PostsView
	Page state.Page
}

// FormatPosts formats a composed post view.
func FormatPosts(v domain.PostsView, p state.Page) (string, error) {
	return execute("posts", postsTemplate, PostsData{View: v, Page: p})
}

// FormatPostDetail formats a post with its comments.
func FormatPostDetail(d domain.PostDetail) (string, error) {
	return execute("postDetail", postDetailTemplate, d)
}

// FormatTags formats the tag list.
func FormatTags(tags []domain.Tag) (string, error) {
	return execute("tags", tagsTemplate, tags)
}

// FormatUser formats a user profile.
func FormatUser(u domain.User) (string, error) {
	return execute("user", userTemplate, &u)
}

// FormatComment formats a single comment on one line.
func FormatComment(c domain.Comment) string {
	return fmt.Sprintf("#%d %s: %s (%d likes)", c.ID, commenter(c.User), truncate(c.Body), c.Likes)
}

func execute(name, templateStr string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatBoxTitle":  formatBoxTitle,
		"formatBoxBottom": formatBoxBottom,
		"bold": func(text string) string {
			return "\033[1m" + text + "\033[0m"
		},
		"truncate":   truncate,
		"wrap":       wrap,
		"join":       strings.Join,
		"authorName": authorName,
		"commenter":  commenter,
	}
}

func authorName(p domain.PostWithAuthor) string {
	if p.Author == nil || p.Author.Username == "" {
		return unknownAuthor
	}

	return "@" + p.Author.Username
}

func commenter(u domain.CommentUser) string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return "@" + u.Username
	default:
		return unknownAuthor
	}
}

func truncate(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")

	r := []rune(text)
	if len(r) > titleMaxLen {
		return string(r[:titleTrunc]) + "..."
	}

	return text
}

// wrap splits text into lines no wider than the box body.
func wrap(text string) []string {
	var (
		lines []string
		line  strings.Builder
	)

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > bodyWidth {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return lines
}

func formatBoxTitle(title string) string {
	titleMax := boxWidth - boxTitlePadding // space for ┌─, ─┐, and spaces

	// Strip ANSI escape codes for length calculation
	cleanTitle := strings.ReplaceAll(title, "\033[1m", "")
	cleanTitle = strings.ReplaceAll(cleanTitle, "\033[0m", "")

	t := cleanTitle
	if len(t) > titleMax {
		t = t[:titleMax]
	}
	dashCount := max(boxWidth-len(t)-boxTitlePadding, 0)

	return "┌─ " + title + " " + strings.Repeat("─", dashCount) + "┐"
}

func formatBoxBottom() string {
	return "└" + strings.Repeat("─", boxWidth-boxBottomPadding) + "┘"
}
