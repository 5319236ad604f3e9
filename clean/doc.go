// Package clean repairs raw extracted text before segmentation.
//
// Cleaning runs in a fixed order:
//
//  1. [Normalize] canonicalizes characters, strips URLs and page markers,
//     collapses whitespace and rejoins line-break hyphenation.
//  2. [JoinWords] merges short fragments split off a word ("t he" -> "the").
//  3. [SplitWords] separates glued words ("ashe" -> "as he").
//  4. [RepairDropCaps] restores isolated initials at sentence starts.
//  5. [ProtectBoundaries] spaces apart case and digit transitions.
//
// Steps 2 and 3 are gated on a [lexicon.Lexicon]; against an empty lexicon
// they leave the text untouched. Every repair reports what it did through a
// [Stats] value returned alongside the text.
//
// The heuristics are best effort. When a repair cannot be validated the text
// is left as it was.
package clean
