// Package preset holds the fixed aspect-ratio and quality tables used to size
// and tune image generations.
package preset

import (
	"fmt"
	"strings"
)

const (
	DefaultAspectRatio = "1:1"
	DefaultQuality     = "standard"
)

// Dimensions is a resolved output size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// QualitySettings controls diffusion steps and guidance scale.
type QualitySettings struct {
	Steps         int     `json:"steps"`
	GuidanceScale float64 `json:"guidance_scale"`
	Description   string  `json:"description"`
}

// Option is a selectable value with a human label, used by the endpoint docs.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

var aspectRatioOrder = []string{"1:1", "16:9", "9:16", "4:3", "3:4", "21:9"}

var aspectRatios = map[string]Dimensions{
	"1:1":  {Width: 1024, Height: 1024},
	"16:9": {Width: 1024, Height: 576},
	"9:16": {Width: 576, Height: 1024},
	"4:3":  {Width: 1024, Height: 768},
	"3:4":  {Width: 768, Height: 1024},
	"21:9": {Width: 1024, Height: 440},
}

var qualityOrder = []string{"standard", "high", "ultra", "4k"}

var qualities = map[string]QualitySettings{
	"standard": {Steps: 20, GuidanceScale: 7.5, Description: "Good quality, fast generation"},
	"high":     {Steps: 30, GuidanceScale: 8.0, Description: "Better quality, moderate time"},
	"ultra":    {Steps: 40, GuidanceScale: 8.5, Description: "Excellent quality, longer time"},
	"4k":       {Steps: 50, GuidanceScale: 9.0, Description: "Best quality, longest time"},
}

// ResolveDimensions maps an aspect ratio to its pixel size. Unknown ratios
// fall back to 1:1.
func ResolveDimensions(aspectRatio string) Dimensions {
	if dims, ok := aspectRatios[aspectRatio]; ok {
		return dims
	}
	return aspectRatios[DefaultAspectRatio]
}

// ResolveQuality maps a quality tier to its settings. Unknown tiers fall back
// to standard.
func ResolveQuality(quality string) QualitySettings {
	if settings, ok := qualities[quality]; ok {
		return settings
	}
	return qualities[DefaultQuality]
}

func IsValidAspectRatio(aspectRatio string) bool {
	_, ok := aspectRatios[aspectRatio]
	return ok
}

func IsValidQuality(quality string) bool {
	_, ok := qualities[quality]
	return ok
}

func AspectRatioValues() []string {
	out := make([]string, len(aspectRatioOrder))
	copy(out, aspectRatioOrder)
	return out
}

func QualityValues() []string {
	out := make([]string, len(qualityOrder))
	copy(out, qualityOrder)
	return out
}

func AspectRatioOptions() []Option {
	options := make([]Option, 0, len(aspectRatioOrder))
	for _, value := range aspectRatioOrder {
		dims := aspectRatios[value]
		options = append(options, Option{
			Value: value,
			Label: fmt.Sprintf("%s (%d×%d)", value, dims.Width, dims.Height),
		})
	}
	return options
}

func QualityOptions() []Option {
	options := make([]Option, 0, len(qualityOrder))
	for _, value := range qualityOrder {
		options = append(options, Option{
			Value:       value,
			Label:       strings.ToUpper(value[:1]) + value[1:] + " Quality",
			Description: qualities[value].Description,
		})
	}
	return options
}
