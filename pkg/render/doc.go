// Package render exposes the output formats a loaded document can be written
// in (full page, embeddable fragment, plain text) behind a name-keyed
// registry shared by the CLI and the live preview component.
package render
