package chart

// Option configures a Factory.
type Option func(*Factory)

// WithSize sets the rendered image size in pixels.
func WithSize(width, height int) Option {
	return func(f *Factory) {
		if width > 0 {
			f.width = width
		}
		if height > 0 {
			f.height = height
		}
	}
}

// WithDateFormat sets the x-axis tick layout.
func WithDateFormat(layout string) Option {
	return func(f *Factory) {
		if layout != "" {
			f.dateFormat = layout
		}
	}
}
