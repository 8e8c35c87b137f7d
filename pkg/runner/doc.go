/*
Package runner implements the terminal loop of the listing wizard.

It acts as the bridge between the stateless engine and a line-oriented frontend.
The runner renders the current step, reads one line, maps it to an intent
(field write, next, back, locate, manual address) and persists the result
through a session.Manager when one is configured.

# Key Components

  - Runner: the render/read/apply loop.
  - IOHandler: decouples presentation (TextHandler for terminals, JSONHandler for pipes).
  - SubmitGuard: confirms the Finish transition.
  - SanitizeInput: size, UTF-8 and control-character checks shared by every host.

# Usage

	r := runner.NewRunner(wizard,
		runner.WithSessions(manager),
		runner.WithSessionID("lister-1"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	state, err := r.Run(ctx)
*/
package runner
