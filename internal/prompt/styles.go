package prompt

import "strings"

// Style is a named preset contributing a descriptor phrase to the prompt.
type Style struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Descriptor string `json:"description"`
	Category   string `json:"category"`
}

const (
	DefaultStyle    = "realistic"
	GeneralCategory = "General"
)

var styleOrder = []string{
	"anime",
	"realistic",
	"cartoon",
	"oil-painting",
	"watercolor",
	"pixel-art",
	"cyberpunk",
	"fantasy",
	"minimalist",
	"vintage",
}

var styleDescriptors = map[string]string{
	"anime":        "anime style, manga art, Japanese animation, vibrant colors, clean lines",
	"realistic":    "photorealistic, highly detailed, professional photography, DSLR, 8K resolution",
	"cartoon":      "cartoon style, Disney animation, cute, colorful, fun",
	"oil-painting": "oil painting, classical art, textured brushstrokes, artistic masterpiece",
	"watercolor":   "watercolor painting, soft edges, flowing colors, artistic",
	"pixel-art":    "pixel art, 8-bit style, retro gaming, blocky pixels",
	"cyberpunk":    "cyberpunk style, neon lights, futuristic, sci-fi, dystopian",
	"fantasy":      "fantasy art, magical, ethereal, mythical creatures",
	"minimalist":   "minimalist style, clean, simple, modern design",
	"vintage":      "vintage style, retro, aged, nostalgic, classic photography",
}

var styleCategories = map[string]string{
	"anime":        "Artistic",
	"realistic":    "Photography",
	"cartoon":      "Artistic",
	"oil-painting": "Artistic",
	"watercolor":   "Artistic",
	"pixel-art":    "Digital Art",
	"cyberpunk":    "Sci-Fi",
	"fantasy":      "Artistic",
	"minimalist":   "Modern",
	"vintage":      "Photography",
}

// Categories lists every template category a client may filter on.
var Categories = []string{
	"Artistic",
	"Photography",
	"Digital Art",
	"Sci-Fi",
	"Modern",
	"General",
	"Fantasy",
	"Abstract",
}

// StyleDescriptor returns the descriptor phrase for id, or "" when unknown.
func StyleDescriptor(id string) string {
	return styleDescriptors[id]
}

// CategoryForStyle returns the category of a built-in style. Unknown styles
// belong to General.
func CategoryForStyle(id string) string {
	if category, ok := styleCategories[id]; ok {
		return category
	}
	return GeneralCategory
}

// DisplayName turns "oil-painting" into "Oil Painting".
func DisplayName(id string) string {
	words := strings.Split(id, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// Styles returns the built-in catalogue in a stable order.
func Styles() []Style {
	styles := make([]Style, 0, len(styleOrder))
	for _, id := range styleOrder {
		styles = append(styles, Style{
			ID:         id,
			Name:       DisplayName(id),
			Descriptor: styleDescriptors[id],
			Category:   CategoryForStyle(id),
		})
	}
	return styles
}

func StyleIDs() []string {
	out := make([]string, len(styleOrder))
	copy(out, styleOrder)
	return out
}
