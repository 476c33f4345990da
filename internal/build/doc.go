// Package build drives the external bundler that compiles an extension into
// its dist directory. It runs the bundler once or keeps rebuilding on file
// changes, classifies every compilation as success or failure, renders the
// diagnostics and hands each successful build to a delivery callback.
package build
