// Package processor schedules submitted purchase-order tasks onto a worker
// pool and drives each one to a terminal state.
package processor
