//go:build !linux

package replacer

// raisePriority is a no-op on platforms without a comparable scheduling
// knob. The priority envelope is advisory only.
func raisePriority() func() {
	return func() {}
}
