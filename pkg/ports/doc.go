/*
Package ports defines the driven ports (interfaces) for the TableScout engine.

These interfaces decouple the core workflow from external implementations,
allowing the engine to work with various discovery sources, evaluation
backends, list stores, and run-state storage.

# Key Interfaces

  - Searcher: the Source Collaborator (editorial search or feeds).
  - Evaluator: the Extraction/Ranking Collaborator (model-backed).
  - ListStore: the curated list (fetch-all and append only).
  - RunStore: durable RunState persistence keyed by session ID.
  - DistributedLocker: cross-process session locking.
  - Conversation: the inbound surface used by HTTP, MCP, and CLI adapters.
*/
package ports
