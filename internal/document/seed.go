package document

import (
	"github.com/starford/linkvault/internal/ident"
	"github.com/starford/linkvault/internal/models"
)

// Defaults applied when a section is created without an emoji or color.
const (
	DefaultEmoji = "📁"
	DefaultColor = "#c9a84c"
)

// Emojis is the palette offered when creating or editing a section.
var Emojis = []string{
	"📁", "🤖", "🎨", "🎬", "🎵", "📸", "💻", "🌐", "🔗", "📝",
	"🎮", "📊", "🛒", "💡", "🔧", "⭐", "🚀", "📱", "🎯", "💎",
}

// Colors is the palette offered when creating or editing a section.
var Colors = []string{
	"#c9a84c", "#f87171", "#60a5fa", "#34d399", "#a78bfa",
	"#f472b6", "#fb923c", "#2dd4bf", "#facc15", "#94a3b8",
}

// Seed returns the first-run document: one open section with two example links.
func Seed(newID ident.Generator) models.Document {
	return models.Document{Groups: []models.Section{{
		ID:     newID(),
		Name:   "AI tools",
		Emoji:  "🤖",
		Color:  DefaultColor,
		IsOpen: true,
		Links: []models.Link{
			{ID: newID(), Name: "Claude", URL: "https://claude.ai"},
			{ID: newID(), Name: "ChatGPT", URL: "https://chat.openai.com"},
		},
	}}}
}
