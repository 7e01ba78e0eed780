/*
Package session implements session access orchestration over a SessionStore.

Every front end (CLI, HTTP, MCP) routes session reads and writes through a
Manager, which serializes work per session id: the engine's read-modify-write
cycle assumes at most one concurrent writer per session. Local serialization
uses reference-counted mutexes; deployments with multiple replicas add a
DistributedLocker on top.
*/
package session
