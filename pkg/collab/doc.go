// Package collab talks to the document backend that detects placeholders in
// uploaded documents and produces filled exports. It carries the wire types,
// an HTTP client, the OpenAPI contract used to discover endpoints, markup
// sanitizing and offline fixtures.
package collab
