package pager

const (
	// DefaultPageSize matches the common filesystem block size.
	DefaultPageSize = 4096

	DefaultMinFillPercent = 0.5
	DefaultMaxFillPercent = 0.95
)

// Options controls the page geometry and the fill thresholds that decide
// when a node is split.
type Options struct {
	// PageSize is the number of bytes per page; it governs all offset
	// arithmetic in the file.
	PageSize int

	// MinFillPercent is the lower fill bound: a prefix of a node below this
	// ratio is not a valid split point.
	MinFillPercent float64

	// MaxFillPercent is the over-population threshold that triggers a split.
	MaxFillPercent float64
}

// DefaultOptions returns the standard 4096-byte page geometry.
func DefaultOptions() Options {
	return Options{
		PageSize:       DefaultPageSize,
		MinFillPercent: DefaultMinFillPercent,
		MaxFillPercent: DefaultMaxFillPercent,
	}
}

// MinThreshold is MinFillPercent expressed in bytes of a page.
func (o Options) MinThreshold() float64 {
	return o.MinFillPercent * float64(o.PageSize)
}

// MaxThreshold is MaxFillPercent expressed in bytes of a page.
func (o Options) MaxThreshold() float64 {
	return o.MaxFillPercent * float64(o.PageSize)
}
