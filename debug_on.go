//go:build anna_debug

package anna

// debugChecks enables the phase, handle and batch checks. They panic on failure.
const debugChecks = true
