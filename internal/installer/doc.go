// Package installer ties the install pipeline together: optionally compile
// the extension, package it into dist.zip and ask the app to install the
// archive. Packaging always finishes before the app is contacted, and a
// failed build or archive never reaches the app.
package installer
