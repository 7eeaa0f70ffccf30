package plot

import "fmt"

// ChartKind names which diagnostic a chart shows
type ChartKind string

const (
	ChartISI      ChartKind = "isi"
	ChartWaveform ChartKind = "waveform"
)

// Color is an opaque RGB color
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Gray returns the color with R=G=B=level
func Gray(level uint8) Color {
	return Color{R: level, G: level, B: level}
}

// Hex returns the CSS hex form
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Axis describes how one axis is drawn.
// MaxTicks of zero leaves tick placement to the renderer.
type Axis struct {
	Label        string `json:"label,omitempty"`
	Hidden       bool   `json:"hidden"`
	Logarithmic  bool   `json:"logarithmic"`
	MaxTicks     int    `json:"max_ticks,omitempty"`
	TickDecimals int    `json:"tick_decimals"`
}

// Series is one drawn line
type Series struct {
	Name  string    `json:"name"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
	Color Color     `json:"color"`
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.X)
}

// ChartSpec is a renderer-independent chart description
type ChartSpec struct {
	Kind   ChartKind `json:"kind"`
	XAxis  Axis      `json:"x_axis"`
	YAxis  Axis      `json:"y_axis"`
	Series []Series  `json:"series"`
}
