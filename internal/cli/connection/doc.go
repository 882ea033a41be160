// Package connection provides connection management for discount-cli.
//
// This package manages connections to discount servers:
//
//   - client.go: TCP client speaking the binary protocol
//   - manager.go: Current connection for the interactive mode
//
// A Client serializes requests; the protocol has no request IDs, so
// responses are matched to requests by order.
package connection
