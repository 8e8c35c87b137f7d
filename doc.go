/*
Package spotlist is a step-gated wizard engine for listing a parking space.

A session walks four data steps (who owns the space, where it is, capacity and
contact, kind of space) and ends at a terminal confirmation step. The engine
owns navigation and validation. Hosts (terminal, HTTP, MCP) own I/O and persist
the state between calls.

# Usage

	w, err := spotlist.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, _ := w.Start(ctx, "session-123")

	state, _ = w.Apply(ctx, state, domain.SetOwnerType{Value: domain.OwnerLand})
	state, moved, _ := w.Next(ctx, state)

Every operation returns a new state. Apply never blocks; Next only moves when
the fields of the current step are valid. Back never validates.

# Location

Step two branches on whether the user is at the spot. The device branch goes
through a ports.Locator (FetchLocation, or BeginLocate/ResolveLocate for hosts
that resolve asynchronously). Results of superseded requests are discarded by
generation. The manual branch records a composed address without coordinates.

# Completion

Entering the terminal step assembles a domain.SubmissionRecord and hands it to
the configured ports.SubmissionSink. Sink failures are logged, never returned.
*/
package spotlist
