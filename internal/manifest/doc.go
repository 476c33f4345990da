// Package manifest handles parsing and validation of an extension's
// plugin.json. Documents are validated against the embedded JSON schema in
// schema/plugin.schema.json and the version field must be a semantic version.
package manifest
