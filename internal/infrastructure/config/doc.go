// Package config loads and validates bridge configuration.
//
// Configuration is merged from three layers, later layers winning:
//
//  1. Hardcoded defaults
//  2. A YAML file (optional; path given on the command line or STBRIDGE_CONFIG)
//  3. STBRIDGE_* environment variables
//
// The SmartThings personal access token is the only hard requirement.
// Validation runs before any network connection is attempted, so a
// misconfigured bridge fails fast with a list of every problem found
// rather than dying on the first one.
package config
