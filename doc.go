// Package poflow implements an asynchronous purchase-order approval engine.
// Submitted orders become tasks that a worker pool drives through a fixed
// lifecycle (Created, Running, then Completed, Failed or Cancelled). A task
// is decided either by built-in business rules or, when configured, by an
// Azure OpenAI completion delegate; terminal transitions are published as
// typed events.
package poflow
