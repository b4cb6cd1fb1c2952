//go:build !anna_debug

package anna

const debugChecks = false
