package document

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/linkvault/internal/apperr"
)

// SectionInput carries the editable fields of a section.
type SectionInput struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// Validate checks the trimmed input.
func (in *SectionInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required.Error("section name is required")),
		validation.Field(&in.Emoji, validation.RuneLength(0, 16)),
		validation.Field(&in.Color, is.HexColor.Error("color must be a hex color")),
	)
}

// normalize trims the input, validates it and fills blank emoji and color
// from fallback.
func (in SectionInput) normalize(emoji, color string) (SectionInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Emoji = strings.TrimSpace(in.Emoji)
	in.Color = strings.TrimSpace(in.Color)
	if err := in.Validate(); err != nil {
		return in, apperr.Validation(err.Error())
	}
	if in.Emoji == "" {
		in.Emoji = emoji
	}
	if in.Color == "" {
		in.Color = color
	}
	return in, nil
}

// LinkInput carries the editable fields of a link.
type LinkInput struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Validate checks the trimmed input.
func (in *LinkInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.URL, validation.Required.Error("url is required")),
	)
}

func (in LinkInput) normalize() (LinkInput, error) {
	in.URL = strings.TrimSpace(in.URL)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return in, apperr.Validation(err.Error())
	}
	in.URL = NormalizeURL(in.URL)
	if in.Name == "" {
		in.Name = Domain(in.URL)
	}
	return in, nil
}

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// NormalizeURL prefixes https:// when raw carries no scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || schemeRe.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

// Domain returns the host of rawURL without a leading "www.", or rawURL itself
// when it does not parse.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
