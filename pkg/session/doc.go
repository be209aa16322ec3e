/*
Package session implements session management and persistence orchestration.

It provides high-level abstractions for handling concurrent access to
session states, integrating per-session in-process locking with optional
distributed locking and a pluggable storage adapter.
*/
package session
