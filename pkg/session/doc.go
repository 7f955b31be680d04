// Package session ties the field registry, value store, guided traversal,
// conversation log and preview renderer into one explicit object per loaded
// document. A Manager swaps whole sessions when a new document is loaded and
// forwards exports to the backend.
package session
