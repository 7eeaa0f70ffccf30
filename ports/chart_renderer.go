package ports

import (
	"spikereview/domain/plot"
)

// ChartRenderer draws a chart description onto a drawing surface and
// returns the encoded image
type ChartRenderer interface {
	Render(spec plot.ChartSpec) ([]byte, error)
	ContentType() string
}
