// Package application wires the resolved configuration into a Redis handle,
// the status handler, router and HTTP server, keeping the main package
// focused on CLI parsing and orchestration.
package application
