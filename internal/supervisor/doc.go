// Package supervisor starts and watches the long-running helper servers the
// editor talks to: terminal backends and the language server.
//
// Backends come from a closed table keyed by name; an unknown name fails
// with ErrUnknownBackend before anything is spawned. Each started child is
// tracked by a Handle in a registry keyed by a random invocation id. Output
// from the child is forwarded line by line to the Logger, tagged with the
// backend name. Children are never restarted. Shutdown cancels every running
// child and waits for it to exit.
package supervisor
