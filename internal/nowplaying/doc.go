// Package nowplaying folds the metadata event stream into current-track
// state. Core song fields accumulate between MetadataStart and MetadataEnd
// and commit as one track snapshot; playback signals drive the play state;
// volume and progress payloads are parsed into typed values. Consumers read
// a point-in-time Snapshot or subscribe to change callbacks.
package nowplaying
