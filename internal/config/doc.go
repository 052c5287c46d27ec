// Package config loads, normalizes, and validates the tonearm TOML
// configuration. Load applies repository defaults first, so a missing file
// yields a fully usable configuration pointed at the conventional
// shairport-sync metadata pipe.
package config
