/*
Package workspace manages the open flows of a process.

It keeps one Editor per flow in memory, persists them through a FlowStore and
serializes access per flow id. An optional DistributedLocker extends that
serialization across replicas sharing the same store.
*/
package workspace
