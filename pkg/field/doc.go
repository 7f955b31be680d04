// Package field defines the immutable field registry produced when a document
// is uploaded. A Field describes one fillable location (a bracketed token such
// as `[Company Name]` or a trailing signature line such as `By:`) together
// with the guidance the upload collaborator attached to it: a short hint, a
// long explanation used by guided fill, and a demo value for quick-fill.
//
// Registries are built once per document and never mutated. Identifiers are
// typed (ID) so value and guidance APIs cannot be handed arbitrary strings;
// untrusted input coming from HTTP or the CLI goes through Registry.Lookup.
package field
