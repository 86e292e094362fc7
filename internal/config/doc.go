// Package config holds imgcrawl's runtime configuration.
//
// Configuration comes from two places:
//   - CLI flags and positional arguments, gathered into Config
//   - An optional YAML file (.imgcrawl) with per-host request settings
//
// Example configuration file:
//
//	defaults:
//	  userAgent: "imgcrawl/1.0"
//	hosts:
//	  images.example.com:
//	    headers:
//	      Accept-Language: "ja-JP"
//
// Config.Validate and the argument parsers return sentinel errors so the
// CLI can map them to usage errors with errors.Is.
package config
