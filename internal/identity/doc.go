// Package identity canonicalizes raw phone and email strings into the stable
// comparison form used throughout the contact database.
//
// Normalization is a pure function: phones become a leading + followed by 7-15
// digits (numbers without a country code are assumed to belong to a single
// configured default region), emails are trimmed with the domain lowercased.
// Malformed input fails with ErrInvalidIdentifier before it can reach storage,
// so identifier rows only ever hold canonical values.
package identity
