// Package artwork writes Picture payloads to disk. Files are named by
// content hash so repeated covers dedupe naturally, a "current" symlink
// always points at the latest cover, and the directory is pruned to a
// configured cap, oldest first.
package artwork
