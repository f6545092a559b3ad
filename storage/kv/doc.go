// Package kv provides an interface for implementing kv backends that
// hold the entries of context-namespaced stores.
//
// A kv plugin is a factory for backend instances. A backend is a flat
// map from derived keys to opaque values:
//
//	- Backend
//	  - derivedKey1: abc
//	  - derivedKey2: def
//
// Rather than pushing namespacing down into the backends, isolation
// between owners is enforced entirely by the key derivation layer
// (the keys package): every key a backend sees already encodes the
// identity of the store that wrote it. This keeps backends trivial to
// implement and lets any number of stores with different contexts
// share one backend instance or one remote service.
//
// Backends perform exactly one round-trip per Get or Set. There is no
// caching, no retry and no TTL layer; a failed round-trip surfaces
// immediately to the caller.
package kv
