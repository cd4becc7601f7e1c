// Package changelog provides the update records parsed from a changelog page
// and the bookkeeping used to decide which of them still need announcing.
//
// Each Update is keyed by its heading text. A PostedSet holds the keys that have
// already been delivered; Diff compares freshly parsed updates against it.
package changelog
