// Package transition coordinates moving a simulation peer from one scene to
// another.
//
// # Components
//
//   - Task / Switcher: the contract a content-loading back end implements. The
//     Switcher produces a cooperatively suspending Task for each transition;
//     the task reports the scene-bound objects it loaded through a FinishFunc.
//   - Manager: attached to one Runtime. Its Tick method is the polling
//     trigger, called once per simulation tick. It detects a change of the
//     runtime's desired scene and launches a transition when idle.
//   - driver: supervises one transition end to end. It steps the task once
//     per tick, captures errors and panics, releases the single-flight guard
//     on every exit path and publishes the new object registry only when the
//     task both completed and reported its objects.
//
// # Single flight
//
// All managers in a process share one guard (see package guard), so at most
// one transition is stepping at any time even when several peers run in the
// same process. A manager that is destroyed while holding the guard does not
// block others.
//
// # Outdated is sticky
//
// Once the desired scene differs from the active one, a transition is owed
// until one is launched, even if the desired scene changes back in between.
// Toggling back to the active scene therefore reloads it.
//
// # Limitations
//
// Transitions cannot be cancelled and have no deadline. A task that never
// finishes keeps its manager (and, through the guard, every other manager)
// waiting.
//
// # Threading
//
// Manager methods must be called from the tick timeline. Tasks that perform
// I/O on worker goroutines must hand results back to the task and consume
// them inside Step.
package transition
