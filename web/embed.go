// Package web embeds the page templates and static assets served by the UI.
package web

import "embed"

//go:generate curl -sSfL -o static/vendor/htmx.min.js https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js
//go:generate curl -sSfL -o static/vendor/htmx-ext-sse.js https://unpkg.com/htmx-ext-sse@2.2.2/sse.js

// TemplatesFS holds the pages and the partials htmx swaps in.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet, the page script and the vendored htmx
// build with its SSE extension.
//
//go:embed static/*
var StaticFS embed.FS
