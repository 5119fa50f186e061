// Package static serves the public web root.
//
// Request paths are resolved against the root; a path that climbs out of it
// is refused with 403. Unknown paths fall back to the root index.html so the
// browser apps can route client side. Directories serve their own
// index.html or 404.
package static
