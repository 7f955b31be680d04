// Package livepreview exposes a loaded document session over net/http so a
// browser UI can edit fields, drive the guide, chat, and watch the preview
// update. All requests are serialized; the session itself is single-threaded.
//
// Routes are relative to the mount path:
//
//	GET  /preview?format=html|fragment|text
//	GET  /state?since=N
//	POST /document            (multipart "file")
//	POST /fields/{id}         {"value": "..."}
//	POST /fields/{id}/blur
//	POST /guide
//	POST /chat                {"text": "..."}
//	POST /demo
//	POST /advance?ms=N
//	POST /export
package livepreview
