package runner

import (
	"context"
	"strings"

	"github.com/tablescout/tablescout/pkg/domain"
)

// DecisionInterceptor inspects a suspended outcome and may answer it
// programmatically. When answered is true the response is submitted as the
// decision without prompting the user.
type DecisionInterceptor func(ctx context.Context, outcome *domain.Outcome) (response string, answered bool, err error)

// MultiInterceptor chains interceptors. The first one that answers wins;
// errors stop the chain.
func MultiInterceptor(interceptors ...DecisionInterceptor) DecisionInterceptor {
	return func(ctx context.Context, outcome *domain.Outcome) (string, bool, error) {
		for _, interceptor := range interceptors {
			if interceptor == nil {
				continue
			}
			response, answered, err := interceptor(ctx, outcome)
			if err != nil {
				return "", false, err
			}
			if answered {
				return response, true, nil
			}
		}
		return "", false, nil
	}
}

// AutoApproveMiddleware answers every pending approval affirmatively and
// declines retries after a reported error. Intended for scripted runs;
// interactive sessions should leave decisions to the user.
func AutoApproveMiddleware() DecisionInterceptor {
	return func(ctx context.Context, outcome *domain.Outcome) (string, bool, error) {
		switch outcome.Phase {
		case domain.PhaseAwaitingApproval:
			return "yes", true, nil
		case domain.PhaseErrorReported:
			return "cancel", true, nil
		default:
			return "", false, nil
		}
	}
}

// ConfirmationMiddleware gates another interceptor's answer behind a y/n
// prompt on the handler. Anything other than y or yes discards the
// automatic answer and falls through to the interactive prompt.
func ConfirmationMiddleware(handler IOHandler, next DecisionInterceptor) DecisionInterceptor {
	return func(ctx context.Context, outcome *domain.Outcome) (string, bool, error) {
		if next == nil {
			return "", false, nil
		}
		response, answered, err := next(ctx, outcome)
		if err != nil || !answered {
			return "", answered, err
		}
		if err := handler.SystemOutput(ctx, "Automatic response: "+response+". Confirm? [y/N]"); err != nil {
			return "", false, err
		}
		answer, err := handler.Input(ctx)
		if err != nil {
			return "", false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return response, true, nil
		default:
			return "", false, nil
		}
	}
}
