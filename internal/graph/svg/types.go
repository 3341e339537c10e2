package svg

// Series is one coloured set of bars, one value per label.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	// Unit is appended to the axis caption, e.g. "lakhs".
	Unit      string
	AxisColor string
	GridColor string
	Padding   float64
	TickCount int
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 280
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

var palette = []string{"#0ea5e9", "#f97316", "#22c55e", "#a855f7", "#ef4444"}
