// Package logger builds the diagnostic logger used by sessions and the CLI.
//
// Diagnostic logs describe what the engine is doing (launching, killing and
// reaping processes, restoring scopes). They're separate from what a session
// echoes to its own stdout and stderr.
package logger
