// Package smartthings is a thin client for the SmartThings cloud REST API.
//
// The bridge needs three calls: list devices, fetch a device's component
// status document, and submit a command envelope. All calls authenticate
// with a personal access token and use a fixed HTTP timeout; retries and
// failure handling belong to the caller.
package smartthings
