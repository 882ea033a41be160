// Package tests provides end-to-end tests for the discount service.
//
// The tests wire the storage engine, code service, TCP server and CLI
// client together over loopback and a temporary snapshot file.
package tests
