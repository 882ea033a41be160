// Package codeserver serves the discount code binary protocol over TCP.
//
// Frames are little-endian. Each request starts with a one-byte opcode:
//
//	1  generate  count:uint16 length:uint8      -> 1 byte, 0 or 1
//	2  use       code:[8]byte, space padded     -> 1 byte result 0..3
//
// Unknown opcodes are logged and produce no response. Each connection is
// served by its own goroutine until the client disconnects or the server
// shuts down.
package codeserver
