package prompt

// Theme captures optional prefixes applied to printed messages.
type Theme struct {
	AssistantPrefix string
	SystemPrefix    string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithRealtimePacing waits out the guide's pacing delay on the wall clock
// instead of delivering paced messages immediately.
func WithRealtimePacing(enabled bool) Option {
	return func(r *Runner) {
		r.realtime = enabled
	}
}
