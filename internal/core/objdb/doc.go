// Package objdb implements a generational, session-locked object database.
//
// Objects live in address-stable slots tracked by a never-reused 64-bit
// generation. Handles (RawObj, Obj[T]) are small copyable values carrying the
// slot reference and the generation they were created with; every dereference
// re-validates the generation and checks the calling Session against the
// object's lock.
//
// Locks here are coarse access-control domains, not blocking mutexes: a
// Session either acquires its whole lock set immediately or fails. The model
// assumes a cooperative scheduler upstream hands disjoint lock sets to
// concurrent tasks; this package provides the enforcement, never the waiting.
package objdb
