/*
Package mutable moves values between a real-time goroutine and the rest of
the application without locks or allocation.

Slot is a single element mailbox with overwrite semantics. It carries state,
not events: if the producer pushes twice before the consumer pulls, only the
latest value is observed. Code that must see every value should use event
buffers instead.

Typical use is a parameter edit flowing into the audio graph:

	var gain mutable.Slot[float64]

	// control goroutine
	gain.Push(0.5)

	// real-time goroutine, once per block
	var g float64
	if gain.Pull(&g) {
		apply(g)
	}

and a meter value flowing out of it in the opposite direction.
*/
package mutable
