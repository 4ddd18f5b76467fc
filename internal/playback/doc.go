// Package playback plays extracted detection clips, at most one at a time.
//
// Controller is a small state machine: idle, or playing one Key. Toggling the
// playing key stops it; toggling another key stops the current clip before
// the new one starts, under the same lock, so two clips are never reported
// as playing together. A clip that ends or fails returns the controller to
// idle. Close stops everything and is called when the owning view exits.
package playback
