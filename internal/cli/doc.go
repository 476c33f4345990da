// Package cli defines the Cobra command tree for the acode CLI. The root
// command opens files and folders in the app and starts helper servers;
// subcommands install extensions and manage installed plugins. Commands only
// parse flags and resolve paths, then delegate to the internal packages.
package cli
