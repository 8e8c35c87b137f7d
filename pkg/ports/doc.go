/*
Package ports defines the driven ports (interfaces) of the listing wizard.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, geolocation providers and sinks.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Locator: Supplies the device position for the "I am at the spot" branch.
  - SubmissionSink: Receives the assembled record at the end of the flow.
  - CopyCatalog: Resolves the user-facing text of each step.
*/
package ports
