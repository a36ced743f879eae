// Package render draws the vault as styled terminal text.
package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/linkvault/internal/auth"
	"github.com/starford/linkvault/internal/document"
	"github.com/starford/linkvault/internal/reorder"
	"github.com/starford/linkvault/internal/vault"
)

// Palette used for chrome around the sections.
var (
	ColorMuted   = lipgloss.Color("#6c6f7d")
	ColorAccent  = lipgloss.Color(document.DefaultColor)
	ColorWarning = lipgloss.Color("#f4d03f")
	ColorError   = lipgloss.Color("#e74c3c")
)

// Icons.
const (
	IconOpen     = "▾"
	IconClosed   = "▸"
	IconSelected = "[x]"
	IconIdle     = "[ ]"
	IconSource   = "⇄"
	IconLocked   = "🔒"
)

// Options controls what Render includes.
type Options struct {
	// All expands collapsed sections.
	All bool
	// ShowIDs prints section and link IDs for use with other commands.
	ShowIDs bool
}

type styles struct {
	title, muted, link, warn, err lipgloss.Style
	renderer                      *lipgloss.Renderer
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		renderer: r,
		title:    r.NewStyle().Bold(true).Foreground(ColorAccent),
		muted:    r.NewStyle().Foreground(ColorMuted),
		link:     r.NewStyle().Underline(true),
		warn:     r.NewStyle().Foreground(ColorWarning),
		err:      r.NewStyle().Foreground(ColorError).Bold(true),
	}
}

// Render writes the document in view to w. Colors are dropped when w is not
// a terminal.
func Render(w io.Writer, view vault.View, opts Options) error {
	st := newStyles(w)
	var b strings.Builder

	b.WriteString(header(st, view))
	b.WriteByte('\n')

	if len(view.Document.Groups) == 0 {
		b.WriteString(st.muted.Render("No sections yet. Add one with `linkvault section add <name>`."))
		b.WriteByte('\n')
	}

	selecting := view.Mode == vault.ModeSelection
	for _, sec := range view.Document.Groups {
		open := sec.IsOpen || opts.All
		icon := IconClosed
		if open {
			icon = IconOpen
		}
		name := st.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(sec.Color)).Render(sec.Name)
		line := fmt.Sprintf("%s %s %s %s", icon, sec.Emoji, name, st.muted.Render(fmt.Sprintf("(%d)", len(sec.Links))))
		if isSource(view.ReorderSource, reorder.KindSection, sec.ID, "") {
			line += " " + st.warn.Render(IconSource)
		}
		if opts.ShowIDs {
			line += " " + st.muted.Render(sec.ID)
		}
		b.WriteString(line)
		b.WriteByte('\n')

		if !open {
			continue
		}
		for _, l := range sec.Links {
			prefix := "  "
			if selecting {
				mark := IconIdle
				if slices.Contains(view.Selected, l.ID) {
					mark = IconSelected
				}
				prefix += mark + " "
			}
			row := prefix + st.link.Render(l.Name) + "  " + st.muted.Render(l.URL)
			if isSource(view.ReorderSource, reorder.KindLink, sec.ID, l.ID) {
				row += " " + st.warn.Render(IconSource)
			}
			if opts.ShowIDs {
				row += " " + st.muted.Render(l.ID)
			}
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}

	if c := view.PendingConfirm; c != nil {
		b.WriteByte('\n')
		b.WriteString(st.warn.Render("Pending: " + c.Message))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func header(st styles, view vault.View) string {
	links := 0
	for _, s := range view.Document.Groups {
		links += len(s.Links)
	}
	parts := []string{
		st.title.Render("Linkvault"),
		st.muted.Render(fmt.Sprintf("%d sections, %d links", len(view.Document.Groups), links)),
	}
	if view.Auth == auth.Locked {
		parts = append(parts, IconLocked)
	}
	switch view.Mode {
	case vault.ModeSelection:
		parts = append(parts, st.warn.Render(fmt.Sprintf("selecting (%d)", len(view.Selected))))
	case vault.ModeReorder:
		parts = append(parts, st.warn.Render("reordering"))
	}
	return strings.Join(parts, "  ")
}

func isSource(src *reorder.Source, kind reorder.Kind, sectionID, linkID string) bool {
	if src == nil || src.Kind != kind {
		return false
	}
	return src.SectionID == sectionID && src.LinkID == linkID
}

// Error formats err for the terminal.
func Error(w io.Writer, msg string) {
	st := newStyles(w)
	_, _ = fmt.Fprintln(w, st.err.Render("✗ "+msg))
}

// Success formats a completion message for the terminal.
func Success(w io.Writer, msg string) {
	st := newStyles(w)
	_, _ = fmt.Fprintln(w, st.title.Render("✓")+" "+msg)
}
