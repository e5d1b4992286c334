package output

import "io"

// Option configures a Printer.
type Option func(*Printer)

// WithStyles sets the StyleProvider. An unavailable provider is ignored.
func WithStyles(provider StyleProvider) Option {
	return func(p *Printer) {
		if provider != nil && provider.IsAvailable() {
			p.styleProvider = provider
		}
	}
}

// WithWriter sets the destination. Default is os.Stdout.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode sets the output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// WithMarkdown renders assistant messages through r.
func WithMarkdown(r MarkdownRenderer) Option {
	return func(p *Printer) {
		p.markdown = r
	}
}

// PlainText forces unstyled output.
func PlainText() Option {
	return func(p *Printer) {
		p.mode = ModePlain
	}
}

// JSON selects line-delimited JSON output.
func JSON() Option {
	return func(p *Printer) {
		p.mode = ModeJSON
	}
}

// TestMode gives deterministic output: plain text and no markdown rendering.
func TestMode() Option {
	return func(p *Printer) {
		p.mode = ModePlain
		p.markdown = nil
		p.testMode = true
	}
}

// Silent suppresses all output.
func Silent() Option {
	return func(p *Printer) {
		p.silent = true
	}
}

// WithPrefix prepends prefix to every write.
func WithPrefix(prefix string) Option {
	return func(p *Printer) {
		p.prefix = prefix
	}
}
