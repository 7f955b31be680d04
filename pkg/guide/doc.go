// Package guide implements the guided-fill traversal: a two-state machine that
// walks a field registry in document order, prompting for one unfilled field
// at a time.
//
// A pass is forward-only. After an answer the engine looks strictly after the
// current position for the next empty field; fields before it are only
// revisited when Start is called again. Direct edits made while a pass is in
// progress never advance or cancel it.
//
// The engine performs state transitions synchronously and returns the
// messages it wants shown as Emissions. A prompt for the next field may carry
// a pacing Delay; the delay only affects when the caller shows the message,
// never the state, which has already moved on.
package guide
