// Package stream turns agent events into the outbound Server-Sent Events
// sequence of the chat endpoint: zero or more "token" events followed by
// exactly one "done" or "error" event.
package stream
