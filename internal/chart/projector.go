package chart

// CoordinateProjector maps chart-space values to pixel coordinates.
// ok=false means "currently unmappable" (scrolled away, scale not ready),
// which is an expected outcome, not an error.
type CoordinateProjector interface {
	TimeToX(epochSeconds int64) (float64, bool)
	PriceToY(price float64) (float64, bool)
}

// Viewport describes the visible chart window in both chart space and
// pixel space.
type Viewport struct {
	TimeFrom int64   `json:"time_from"` // epoch seconds, inclusive
	TimeTo   int64   `json:"time_to"`   // epoch seconds, inclusive
	PriceMin float64 `json:"price_min"`
	PriceMax float64 `json:"price_max"`
	Width    float64 `json:"width"`  // pixels
	Height   float64 `json:"height"` // pixels
}

// LinearProjector is a straight-line viewport projector. The real chart
// widget supplies its own projector with log scales and margins; this one
// serves the HTTP overlay endpoint and tests.
type LinearProjector struct {
	vp Viewport
}

var _ CoordinateProjector = (*LinearProjector)(nil)

// NewLinearProjector creates a projector for the given viewport.
func NewLinearProjector(vp Viewport) *LinearProjector {
	return &LinearProjector{vp: vp}
}

// TimeToX maps an epoch-seconds timestamp to an x pixel offset.
func (p *LinearProjector) TimeToX(epochSeconds int64) (float64, bool) {
	span := p.vp.TimeTo - p.vp.TimeFrom
	if span <= 0 || epochSeconds < p.vp.TimeFrom || epochSeconds > p.vp.TimeTo {
		return 0, false
	}
	return float64(epochSeconds-p.vp.TimeFrom) / float64(span) * p.vp.Width, true
}

// PriceToY maps a price to a y pixel offset. Pixel y grows downward, so
// the top of the viewport is PriceMax.
func (p *LinearProjector) PriceToY(price float64) (float64, bool) {
	span := p.vp.PriceMax - p.vp.PriceMin
	if span <= 0 || price < p.vp.PriceMin || price > p.vp.PriceMax {
		return 0, false
	}
	return (p.vp.PriceMax - price) / span * p.vp.Height, true
}
