// Package rag turns cleaned text into training chunks and exports them as
// dataset artifacts.
//
// # Segmentation
//
// The [Segmenter] splits text on whitespace that follows sentence-ending
// punctuation and discards noisy candidates:
//
//	seg := rag.NewSegmenter()
//	result := seg.Segment(text)
//
// A candidate survives when it has at least MinChars characters and its
// ratio of symbol characters (neither alphanumeric nor whitespace) does not
// exceed MaxSymbolRatio.
//
// # Chunking
//
// The [Chunker] greedily packs sentences into word-bounded chunks:
//
//	chunker := rag.NewChunker()
//	chunks := chunker.Chunk(result.Sentences).Chunks
//
// Use [ChunkerConfig] to control chunking behavior:
//
//   - TargetWords - a buffer is flushed when the next sentence would exceed it
//   - OverlapWords - trailing words carried into the next buffer
//   - MinWords - buffers with this many words or fewer are never emitted
//
// # Export
//
// The [Exporter] derives five artifact families from the chunks:
//
//   - Records() - indexed {id, text, word_count} records
//   - Corpus() - blank-line separated plain text
//   - Instructions() - fixed-instruction records for instruction tuning
//   - Pairs() - adjacent (positive) and randomly sampled (negative) pairs
//   - Split() - seeded train/val/test partition of the records
//
// Randomized artifacts take an explicit *rand.Rand so that the same seed
// always yields the same pairs and partition.
package rag
