// Package connectors provides implementations of the driven SourceStore
// interface. Each connector knows how to resolve metadata and open byte
// streams for a specific source store.
package connectors
