/*
Package domain contains the core domain models and business logic for the TableScout engine.

It defines the fundamental entities of the discovery workflow, such as Candidates,
ListEntries, and the RunState that moves through the phase machine. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Candidate: a discovered restaurant before acceptance, with per-source scores.
  - ListEntry: a persisted, approved Candidate.
  - RunState: the runtime snapshot of one workflow invocation (phase, sets, errors).
  - Decision: a parsed approval response (full, partial, reject, detail request).
*/
package domain
