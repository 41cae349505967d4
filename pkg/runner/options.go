package runner

import "log/slog"

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the IO strategy. Defaults to a TextHandler on
// stdin/stdout.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.handler = handler
	}
}

// WithInterceptor sets the decision interceptor chain. Nil means every
// decision is asked of the user.
func WithInterceptor(interceptor DecisionInterceptor) Option {
	return func(r *Runner) {
		r.interceptor = interceptor
	}
}

// WithLogger sets the structured logger for loop diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSessionID pins the runner to a session. Leave empty to let the
// engine mint one on the first utterance; the runner adopts it for the
// rest of the conversation.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}
