// Package confloader layers configuration sources with koanf.
//
// Priority, lowest first: struct defaults, YAML file, prefixed environment
// variables, bare environment overrides (such as PORT), then maps loaded
// explicitly. Watcher reports edits to the config file through fsnotify.
package confloader
