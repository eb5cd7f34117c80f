// Package textutil provides the text comparison primitives used by duplicate
// detection.
//
// Names are compared two ways: token-frequency fingerprints with cosine
// similarity (order-insensitive, good for "Jess Smith" vs "Smith, Jess") and
// normalized Levenshtein distance (good for typos and short names). Both are
// case-insensitive and pure; the dedupe scorer combines them.
package textutil
