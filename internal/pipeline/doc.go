// Package pipeline runs sounding files through a sequence of processing
// steps: open, archive and summarize.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long batches
//
// The pipeline supports both single soundings and batch processing with
// concurrency control using errgroup.
package pipeline
