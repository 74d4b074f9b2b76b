// Package track provides the handle table for in-flight waitable calls.
//
// Every waitable dispatch registers its call record here and receives an
// opaque Handle; releasing the call removes it. The table is the single
// source of truth for which waitable calls are still live, which lets a
// registry detect leaked handles when it shuts down.
//
// # Lifecycle Events
//
// Observers see each handle's lifecycle:
//
//	tbl.Subscribe(func(e track.Event[*Call]) {
//	    switch e.Type {
//	    case track.EventCreated:   // waitable dispatch issued
//	    case track.EventCompleted: // target thread finished the call
//	    case track.EventDropped:   // issuer released the handle
//	    }
//	})
//
// Handle 0 is reserved and always invalid. Handles are recycled after
// release; holding a Handle past its release is a caller bug.
package track
