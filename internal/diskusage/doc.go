// Package diskusage reports disk-space usage for a directory tree.
//
// An [Analyzer] lists the immediate children of a directory, measures each
// child (recursively for subdirectories, via an [Aggregator]) and returns the
// children ordered by descending size. Sizes are apparent sizes: the logical
// byte length reported by file metadata, not the blocks allocated on disk.
//
// Failures below the analyzed directory are absorbed and recorded on the
// affected entry as an [AccessError]. Only a failure to list the analyzed
// directory itself is returned, as a [*ScanError]. Cancellation is reported
// as [ErrCancelled].
package diskusage
