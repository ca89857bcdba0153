// Package compile runs single-use compile jobs: a trigger file plus every
// source that transitively imports it is pushed through a transform engine
// and mirrored into the profile's output roots.
//
// A Job moves idle -> running -> finished exactly once and reports progress
// to its observers synchronously and in order:
//
//	Started{Files} (Changed|Unchanged){File}... Finished{Count}
//
// Finished is delivered even when the job fails part way.
package compile
