/*
Package ports defines the driven ports (interfaces) for the Cairn engine.

These interfaces decouple the core orchestration logic from external
implementations, allowing the engine to work with various session stores,
document stores, language models, and specialist responders.

# Key Interfaces

  - Responder: A specialist that produces the reply content for one turn.
  - ChatModel: The language-generation dependency a responder may call.
  - SessionStore: Responsible for persisting and loading Sessions.
  - DocumentStore: Responsible for the strategy Document a session builds.
  - DistributedLocker: Provides distributed locking for handling concurrent
    session access across replicas.
*/
package ports
