// Package notion wraps the Notion API for form publishing.
//
// It contains the rate-limited HTTP client, the typed API structures, the
// bidirectional property codec (Decode and Encode) that converts between
// Notion's per-type property JSON and the flat form value representation, and
// the filter compiler that turns list view filter rules into Notion's nested
// filter expression tree.
//
// The codec and the compiler are pure, synchronous transformations over
// in-memory data. They perform no I/O: property-name resolution happens
// through a SchemaIndex the caller builds from a freshly fetched schema.
package notion
