// Package idgen wraps UUID generation so identifiers can be stubbed in
// tests. Callers must treat the returned values as opaque strings.
package idgen
