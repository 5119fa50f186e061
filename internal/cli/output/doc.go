// Package output renders sitegate-cli results as a table, JSON or YAML.
package output
