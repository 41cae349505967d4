/*
Package tablescout is a personal conversational concierge that keeps a
curated restaurant list fresh: it discovers candidates from pluggable
sources, scores and deduplicates them against the list you already have,
and never writes a row without your approval.

The core is an approval-gated workflow. A discovery run walks classify,
discover, evaluate, compare and propose, then suspends until the owner
answers. Suspended runs are durable: the process can exit and a later one
resumes the same session from its store. Failures follow a bounded retry
policy (one retry per step) and end in a reported error the owner settles
with retry or cancel.

# Architecture

The engine is hexagonal. Domain types and ports live under pkg/domain and
pkg/ports; collaborators (search sources, the evaluator, the list store,
run stores) are adapters wired in through options. The same Conversation
port drives the CLI chat loop, the HTTP API and the MCP server.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/tablescout/tablescout"
		"github.com/tablescout/tablescout/pkg/adapters/rss"
	)

	func main() {
		concierge, err := tablescout.New(".tablescout",
			tablescout.WithEvaluator(myEvaluator),
			tablescout.WithSource("eater-dc", rss.New("https://dc.eater.com/rss/index.xml")),
		)
		if err != nil {
			log.Fatal(err)
		}

		// One conversational turn. A blank session ID starts a new run.
		outcome, err := concierge.SubmitUtterance(context.Background(), "", "find new restaurants")
		if err != nil {
			log.Fatal(err)
		}
		log.Println(outcome.Message)

		// Or hand the loop to a terminal.
		if err := concierge.Chat(context.Background(), os.Stdin, os.Stdout); err != nil {
			log.Fatal(err)
		}
	}

Interactive frontends with signal handling, markdown rendering and
decision interceptors live in pkg/runner.
*/
package tablescout
