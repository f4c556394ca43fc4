package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/saturnines/blogql/pkg/blog"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	authorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	bodyStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const (
	previewLength = 80
	dateLayout    = "2006-01-02 15:04"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderPostList(w io.Writer, posts []blog.Post, mock bool) {
	if mock {
		fmt.Fprintln(w, bannerStyle.Render("mock data"))
	}
	if len(posts) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no posts yet"))
		return
	}
	for _, p := range posts {
		fmt.Fprintln(w, titleStyle.Render(p.Title)+"  "+dimStyle.Render(p.ID))
		fmt.Fprintln(w, "  "+byline(p))
		fmt.Fprintln(w, "  "+preview(p.Body))
		fmt.Fprintln(w)
	}
}

func renderPost(w io.Writer, p *blog.Post) {
	fmt.Fprintln(w, titleStyle.Render(p.Title))
	fmt.Fprintln(w, byline(*p))
	fmt.Fprintln(w, bodyStyle.Render(p.Body))
}

func renderUser(w io.Writer, u *blog.User) {
	fmt.Fprintln(w, authorStyle.Render(u.Name)+"  "+dimStyle.Render(u.ID))
	if u.AvatarURL != "" {
		fmt.Fprintln(w, dimStyle.Render(u.AvatarURL))
	}
}

func byline(p blog.Post) string {
	parts := []string{authorStyle.Render(p.Author.Name)}
	if t := p.Published(); !t.IsZero() {
		parts = append(parts, dimStyle.Render(t.Local().Format(dateLayout)))
	}
	if len(p.Tags) > 0 {
		tags := make([]string, len(p.Tags))
		for i, tag := range p.Tags {
			tags[i] = tagStyle.Render("#" + tag)
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return strings.Join(parts, "  ")
}

func preview(body string) string {
	line := strings.Join(strings.Fields(body), " ")
	r := []rune(line)
	if len(r) <= previewLength {
		return line
	}
	return string(r[:previewLength]) + "…"
}
