package driver

import (
	"strings"

	"vellum/pkg/geom"
)

const pxPerMM = 96 / 25.4

var papers = map[string]geom.Size{
	"a3":     {Width: 297 * pxPerMM, Height: 420 * pxPerMM},
	"a4":     {Width: 210 * pxPerMM, Height: 297 * pxPerMM},
	"a5":     {Width: 148 * pxPerMM, Height: 210 * pxPerMM},
	"letter": {Width: 8.5 * 96, Height: 11 * 96},
	"legal":  {Width: 8.5 * 96, Height: 14 * 96},
}

// PaperSize returns the size in CSS pixels of a named paper format.
func PaperSize(name string) (geom.Size, bool) {
	s, ok := papers[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}
