// Package model provides the data types that flow between the stages of the
// corpus preparation pipeline.
//
// Every stage produces exactly one of these types and hands it read-only to
// the next stage:
//
//   - [RawText] - extracted text together with the [Method] that produced it
//   - [Record] - an indexed chunk with its word count
//   - [Instruction] - an instruction-tuning triple built from a chunk
//   - [Pair] - a labeled chunk pair for next-chunk relatedness training
//   - [Split] - the train/validation/test partition of the records
package model
