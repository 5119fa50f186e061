// Package shutdown coordinates graceful termination of the SiteGate server.
//
// Hooks run in reverse registration order under a shared deadline once
// SIGINT or SIGTERM arrives, the parent context ends, or Trigger is called.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
