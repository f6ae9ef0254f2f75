// Package history keeps a bounded message history in a fixed-size byte
// ring.
//
// Records are stored back to back, each terminated by a 0x00 byte, and the
// ring never allocates after construction. Appending a record that does not
// fit in the free space silently drops the oldest records; replay yields
// the survivors oldest first and never returns a partial record.
package history
