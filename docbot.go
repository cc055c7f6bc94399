// Package docbot crawls a versioned, multi-lingual documentation site and
// maintains a full-text index over it with ranking tuned per language.
//
// This package contains domain types, interfaces and the pure text
// functions shared by the implementations. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// goquery/, http/).
package docbot
