/*
Package session implements run persistence orchestration.

It provides high-level abstractions for handling concurrent access to run
states across multiple replicas, integrating in-process mutexes with optional
distributed locking and long-term storage adapters.
*/
package session
