// Package reset implements the factory reset workflow. It contains:
//
//   - Phase: the lifecycle of a reset run (Idle, Running, Completed, Failed)
//   - Step: one unit of destructive work, executed in order
//   - Status: the published view shared by daemon, client and CLI
//   - Controller: the state machine that runs steps on a background
//     goroutine and publishes every transition and progress update
//
// Only one run may be in progress at a time. A run cannot be cancelled once
// started; it ends in Completed or Failed.
package reset
