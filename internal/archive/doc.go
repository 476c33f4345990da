// Package archive turns an extension directory into the dist.zip package the
// host application installs. It checks the required files, validates
// plugin.json, stages a dist directory and writes a deterministic zip whose
// entries are ordered by a depth-first walk of the source tree.
package archive
