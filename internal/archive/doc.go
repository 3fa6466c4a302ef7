// Package archive implements the nested archive session stack at the heart
// of packrat.
//
// An archive session is one open compressed container (tar.gz or zip) that
// entries are streamed into. Sessions nest: beginning a new session while
// another is open pushes it onto a stack, and all entry operations address
// the innermost session until it finalizes. This lets a caller build an
// archive-of-archives without ever holding a whole container in memory.
//
// The core type is [Stack]. [Stack.Begin] opens a session, [Stack.Write] and
// [Stack.Copy] add entries to the innermost one, and [Stack.Finalize] pops
// it, flushes the compression stream, and closes the output handle.
//
// A session begun with foldIntoParent writes to a temporary file. When it
// finalizes, the temp file becomes a pending completion on the enclosing
// session, which absorbs the finished bytes as a single entry and deletes
// the temp file during its own finalization. Completions settle in
// registration order, and a failed child rejects the parent's finalization
// rather than silently dropping data.
//
// Usage:
//
//	stack := archive.NewStack(archive.FormatTarGz, baseDir, logger)
//
//	_ = stack.Begin("release", false)
//	_ = stack.Begin("docs", true) // folds into release.tar.gz
//	_ = stack.Write([]byte("readme"), "README.md")
//	_, _ = stack.Finalize(ctx) // docs.tar.gz becomes pending on release
//	_, _ = stack.Finalize(ctx) // release.tar.gz absorbs docs.tar.gz
package archive
