// Package actix is a small actor runtime: independent state machines
// ("actors") that communicate exclusively by typed message passing.
//
// The package is organised around four coupled subsystems: the Context
// that drives an actor's lifecycle and polls its pending work, the
// Address/Recipient/mailbox pair that lets producers talk to an actor
// without knowing its concrete type, the Arbiter that hosts any number
// of actors on a cooperative event loop, and the supervisor sub-package
// that restarts a crashed actor while keeping its Address valid.
//
// actix deliberately stays out of network codecs, wire protocols, and
// any specific I/O reactor; it binds to those through the task-spawner
// and stream-source contracts described on Arbiter and Context.
package actix
