package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkhorn/inkhorn/internal/svgsanitize"
)

// SanitizeHandler handles SVG sanitizing endpoints.
type SanitizeHandler struct {
	sanitizer *svgsanitize.Sanitizer
}

// NewSanitizeHandler creates a new SVG sanitize handler.
func NewSanitizeHandler(sanitizer *svgsanitize.Sanitizer) *SanitizeHandler {
	return &SanitizeHandler{sanitizer: sanitizer}
}

// Register registers the sanitize routes with the Huma API.
func (h *SanitizeHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "sanitizeSVG",
		Method:      "POST",
		Path:        "/api/v1/svg/sanitize",
		Summary:     "Sanitize inline SVG",
		Description: "Filters untrusted SVG to a safe subset and namespaces its ids and classes",
		Tags:        []string{"SVG"},
	}, h.SanitizeSVG)
}

// SanitizeSVGInput is the input for SVG sanitizing.
type SanitizeSVGInput struct {
	Body struct {
		SVG string `json:"svg" doc:"Raw SVG markup"`
	}
}

// SanitizeSVGOutput is the output for SVG sanitizing.
type SanitizeSVGOutput struct {
	Body struct {
		SVG string `json:"svg" doc:"Sanitized, namespaced SVG markup"`
	}
}

// SanitizeSVG cleans one SVG fragment.
func (h *SanitizeHandler) SanitizeSVG(ctx context.Context, input *SanitizeSVGInput) (*SanitizeSVGOutput, error) {
	clean, ok := h.sanitizer.Sanitize(input.Body.SVG)
	if !ok {
		return nil, huma.Error422UnprocessableEntity("svg is oversized, malformed, or not rooted at an svg element")
	}

	out := &SanitizeSVGOutput{}
	out.Body.SVG = clean
	return out, nil
}
