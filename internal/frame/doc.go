// Package frame implements the shairport-sync metadata wire format: a
// stream of <item> elements carrying a pair of four-byte identifiers, a
// declared payload length, and an optional base64 payload. The Scanner
// splits an arbitrarily chunked byte stream into frame bodies without
// assuming anything about read boundaries, Decode turns one body into an
// Item, and Encode renders an Item back into the layout shairport-sync
// emits. Higher layers attach meaning to the identifier pair; this package
// only moves bytes.
package frame
