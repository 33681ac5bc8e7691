package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkhorn/inkhorn/internal/theme"
)

// ThemeHandler handles theme derivation and validation endpoints.
type ThemeHandler struct{}

// NewThemeHandler creates a new theme handler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Register registers the theme routes with the Huma API.
func (h *ThemeHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listThemePresets",
		Method:      "GET",
		Path:        "/api/v1/themes/presets",
		Summary:     "List theme presets",
		Description: "Returns the fixed preset catalog in display order",
		Tags:        []string{"Themes"},
	}, h.ListPresets)

	huma.Register(api, huma.Operation{
		OperationID: "deriveTheme",
		Method:      "POST",
		Path:        "/api/v1/themes/derive",
		Summary:     "Derive a post palette",
		Description: "Computes the full post palette from seed colors",
		Tags:        []string{"Themes"},
	}, h.DeriveTheme)

	huma.Register(api, huma.Operation{
		OperationID: "deriveSiteTheme",
		Method:      "POST",
		Path:        "/api/v1/themes/derive-site",
		Summary:     "Derive a site palette",
		Description: "Computes the extended site palette, including CSS variables",
		Tags:        []string{"Themes"},
	}, h.DeriveSiteTheme)

	huma.Register(api, huma.Operation{
		OperationID: "validateThemeColors",
		Method:      "POST",
		Path:        "/api/v1/themes/validate",
		Summary:     "Validate seed colors",
		Description: "Checks seed colors against WCAG contrast thresholds",
		Tags:        []string{"Themes"},
	}, h.ValidateColors)

	huma.Register(api, huma.Operation{
		OperationID: "correctThemeColors",
		Method:      "POST",
		Path:        "/api/v1/themes/correct",
		Summary:     "Repair seed color contrast",
		Description: "Adjusts text and accent lightness until contrast thresholds pass",
		Tags:        []string{"Themes"},
	}, h.CorrectColors)
}

// ListPresetsInput is the input for listing presets.
type ListPresetsInput struct{}

// ListPresetsOutput is the output for listing presets.
type ListPresetsOutput struct {
	Body struct {
		Presets []theme.Preset `json:"presets"`
	}
}

// ListPresets returns the preset catalog.
func (h *ThemeHandler) ListPresets(ctx context.Context, input *ListPresetsInput) (*ListPresetsOutput, error) {
	out := &ListPresetsOutput{}
	out.Body.Presets = theme.Presets
	return out, nil
}

// SeedColorsBody carries seed colors in a request body.
type SeedColorsBody struct {
	Background     string `json:"background,omitempty" doc:"Seed background color"`
	Text           string `json:"text,omitempty" doc:"Seed text color"`
	Accent         string `json:"accent,omitempty" doc:"Seed accent color"`
	CodeBackground string `json:"codeBackground,omitempty" doc:"Optional code block background"`
}

func (b SeedColorsBody) seeds() theme.CustomColors {
	return theme.CustomColors{
		Background:     b.Background,
		Text:           b.Text,
		Accent:         b.Accent,
		CodeBackground: b.CodeBackground,
	}
}

// DeriveThemeInput is the input for palette derivation.
type DeriveThemeInput struct {
	Body SeedColorsBody
}

// DeriveThemeOutput is the output for palette derivation.
type DeriveThemeOutput struct {
	Body theme.FullThemeColors
}

// DeriveTheme computes the full post palette from seed colors.
func (h *ThemeHandler) DeriveTheme(ctx context.Context, input *DeriveThemeInput) (*DeriveThemeOutput, error) {
	colors := theme.DeriveThemeColors(input.Body.seeds())
	if colors == nil {
		return nil, huma.Error422UnprocessableEntity("seed colors are incomplete or unparsable")
	}
	return &DeriveThemeOutput{Body: *colors}, nil
}

// DeriveSiteThemeInput is the input for site palette derivation.
type DeriveSiteThemeInput struct {
	Body SeedColorsBody
}

// DeriveSiteThemeOutput is the output for site palette derivation.
type DeriveSiteThemeOutput struct {
	Body struct {
		theme.FullSiteColors
		CSSVariables map[string]string `json:"cssVariables"`
	}
}

// DeriveSiteTheme computes the extended site palette and its CSS variables.
func (h *ThemeHandler) DeriveSiteTheme(ctx context.Context, input *DeriveSiteThemeInput) (*DeriveSiteThemeOutput, error) {
	colors := theme.DeriveSiteColors(input.Body.seeds())
	if colors == nil {
		return nil, huma.Error422UnprocessableEntity("seed colors are incomplete or unparsable")
	}
	out := &DeriveSiteThemeOutput{}
	out.Body.FullSiteColors = *colors
	out.Body.CSSVariables = colors.CSSVariables()
	return out, nil
}

// ValidateColorsInput is the input for contrast validation.
type ValidateColorsInput struct {
	Body SeedColorsBody
}

// ValidateColorsOutput is the output for contrast validation.
type ValidateColorsOutput struct {
	Body theme.Validation
}

// ValidateColors checks seed colors against the WCAG thresholds.
func (h *ThemeHandler) ValidateColors(ctx context.Context, input *ValidateColorsInput) (*ValidateColorsOutput, error) {
	return &ValidateColorsOutput{Body: theme.ValidateCustomColors(input.Body.seeds())}, nil
}

// CorrectColorsInput is the input for contrast repair.
type CorrectColorsInput struct {
	Body SeedColorsBody
}

// CorrectColorsOutput is the output for contrast repair.
type CorrectColorsOutput struct {
	Body struct {
		Corrected  theme.CustomColors `json:"corrected"`
		Validation theme.Validation   `json:"validation"`
	}
}

// CorrectColors repairs text and accent contrast against the background and
// reports the resulting validation.
func (h *ThemeHandler) CorrectColors(ctx context.Context, input *CorrectColorsInput) (*CorrectColorsOutput, error) {
	corrected := theme.CorrectContrast(input.Body.seeds())
	out := &CorrectColorsOutput{}
	out.Body.Corrected = corrected
	out.Body.Validation = theme.ValidateCustomColors(corrected)
	return out, nil
}
