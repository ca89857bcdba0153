// Package source models stylesheet source files.
//
// A File is identified by its canonical path: absolute, symlinks resolved where
// the path exists, and NFC-normalized so the same file reached through a link, a
// relative form or a decomposed Unicode name collapses to one value. Files are
// plain values; the text is read on demand and never held.
package source
