// Package cmd implements the command-line interface for smartlabel.
//
// This package provides the following commands:
//   - analyze: Sample the inbox and generate a fresh category taxonomy
//   - label: Classify and label unprocessed inbox messages
//   - verify: Audit the label hierarchy for inconsistencies
//   - setup: Authorize Gmail access and review the taxonomy
//   - version: Display version information
//
// The label command is the default command when no subcommand is specified.
package cmd
