// Package corpusprep turns a PDF or text document into machine-learning
// training datasets through a fluent pipeline.
//
// Basic usage:
//
//	result, err := corpusprep.Open("book.pdf").Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(result.Report.TotalChunks)
//
// With options:
//
//	result, err := corpusprep.Open("book.pdf").
//	    WorkDir("/var/lib/corpus").
//	    LexiconFile("words.txt").
//	    Format(rag.ExportFormatJSONL).
//	    Logger(logger).
//	    Run(ctx)
//
// The pipeline runs five stages in order: text extraction, cleaning,
// chunking, dataset export and evaluation. Every stage reads its input from
// the artifacts persisted by the previous one, and a stage marker in the
// working directory lets a later run against the same source skip finished
// work. A different source invalidates all previous artifacts first.
//
// For lower-level control the clean, rag and report packages can be used
// directly.
package corpusprep

// Open starts a pipeline for the source document at path.
//
// Example:
//
//	result, err := corpusprep.Open("notes.txt").WorkDir(dir).Run(ctx)
func Open(path string) *Pipeline {
	return &Pipeline{
		source:  path,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	result := corpusprep.Must(corpusprep.Open("notes.txt").Run(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
