// Package metadata maps decoded frame identifier pairs onto typed events.
//
// Two identifier namespaces exist on the wire: "core" carries DAAP song
// metadata and "ssnc" carries shairport-sync playback signals. The mapping
// is a static table compiled into a lookup map at init, so every event the
// stream can produce is a named Kind and adding a mapping never touches the
// scanning or decoding layers. Identifier pairs outside the table classify
// as KindOther with the raw payload attached; nothing is ever dropped.
package metadata
