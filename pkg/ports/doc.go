/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various storage backends.

# Key Interfaces

  - StateStore: Responsible for persisting and loading session State.
*/
package ports
