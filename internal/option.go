package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	message string
	dryRun  bool
	watch   bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMessage sets the release notes message, bypassing the environment
// and git HEAD fallbacks.
func WithMessage(msg string) Option {
	return func(a *application) {
		a.message = msg
	}
}

// WithDryRun makes the update report what would change without writing.
func WithDryRun(dryRun bool) Option {
	return func(a *application) {
		a.dryRun = dryRun
	}
}

// WithWatch makes serve mode run the file watcher alongside the server.
func WithWatch(watch bool) Option {
	return func(a *application) {
		a.watch = watch
	}
}
