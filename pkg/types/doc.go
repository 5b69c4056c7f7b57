// Package types defines the content kinds, entity shapes, field schemas,
// the ContentStore contract, and the typed store errors shared by every
// contentdesk backend.
package types
