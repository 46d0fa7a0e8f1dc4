// Package cli provides the exoscope terminal client.
//
// It wires configuration, local storage, the session manager, API services
// and texture generation, then exposes them twice: as one-shot cobra
// commands and as an interactive REPL started by the root command.
//
// The REPL validates a restored session in the background. Until that
// finishes, commands that need an account are refused. A background watcher
// pings the API and switches the prompt between online and offline mode;
// archive listings fall back to the last local snapshot while offline.
package cli
