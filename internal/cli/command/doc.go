// Package command defines the sitegate-cli commands.
//
//	sitegate-cli login --identity admin --secret ...
//	sitegate-cli session
//	sitegate-cli logout
//	sitegate-cli digest --pepper ... --secret ...
//	sitegate-cli health
//	sitegate-cli ready
//
// login saves the session token to the CLI config file so that session and
// logout can reuse it; --token overrides the saved one.
package command
