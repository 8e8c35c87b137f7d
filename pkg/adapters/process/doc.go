// Package process runs allow-listed local commands: post-submission hooks
// (Sink) and command-backed device geolocation (Locator).
package process
