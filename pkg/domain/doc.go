/*
Package domain contains the core domain models of the parking-space listing wizard.

It defines the wizard steps and their transition table, the session State, the closed set
of typed update Commands and the Reduce function that applies them, the per-step validation
gates, and the SubmissionRecord assembled at the end of the flow. This package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Step: one screen of the flow (OwnerType, LocationEntry, Details, SpaceType, Complete).
  - State: the record owned by the engine for one session.
  - Command: a typed field overwrite (SetOwnerType, SetContact, ...), applied by Reduce.
  - View: what a host should draw for the current step.
  - SubmissionRecord: the lead handed to the submission sink.
*/
package domain
