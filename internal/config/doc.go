// Package config manages user-level settings stored at ~/.acode/config.yaml.
// Values can be overridden with ACODE_* environment variables. It exposes the
// activation package ids, grace period, URI opener, bundler choice and
// backend executable overrides as a typed Settings value.
package config
