// Package content is the data access layer between contentdesk and a
// types.ContentStore. Each kind gets a typed Collection that requests the
// fixed projection and depth, decodes metadata, sorts lists freshest first,
// and translates store failures into user-facing OpErrors.
package content
