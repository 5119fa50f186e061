// Package tests holds end-to-end tests that run the full sitegate HTTP
// stack (router, middleware, handlers, session store and metrics) over a
// real listener.
package tests
