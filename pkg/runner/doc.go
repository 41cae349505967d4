/*
Package runner implements the interactive chat loop between a user and the
concierge.

It bridges the conversation port and the outside world: pluggable IO
handlers (plain text for terminals, JSON Lines for driving the loop
programmatically), input sanitization, signal handling, and a decision
interceptor chain that can answer suspended runs on the user's behalf
(auto-approve for scripted use, confirmation notices for interactive use).

# Usage

	r := runner.New(
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithSessionID("date-night"),
	)

	if err := r.Run(ctx, concierge); err != nil {
		log.Fatal(err)
	}

The runner submits every line through the conversation port. When a run is
suspended on an approval, the next line is the decision; the engine routes
it, so the loop itself stays a single input channel.
*/
package runner
