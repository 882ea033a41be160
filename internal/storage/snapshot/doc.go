// Package snapshot reads and writes the code snapshot file.
//
// A snapshot is a full dump of the code table, stored as an indented JSON
// list so it can be inspected and edited by hand:
//
//	[
//	  {
//	    "code": "ABCD123",
//	    "used": false
//	  }
//	]
//
// Every save rewrites the whole file. Writes go to a temporary file in the
// same directory which is fsynced and renamed over the target, so a crash
// mid-write leaves the previous snapshot intact.
//
// Loading is strict: unparsable JSON or an entry violating the code format
// is reported as domain.ErrSnapshotMalformed and must abort startup.
package snapshot
