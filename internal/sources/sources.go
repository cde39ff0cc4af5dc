// ABOUTME: Shared contract for vendor data sources.
// ABOUTME: Sources validate their directories before any parsing happens.
package sources

// Source is a vendor export directory that can verify its own layout.
type Source interface {
	Validate() error
}
