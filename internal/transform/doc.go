// Package transform provides compile.Engine implementations.
//
// ExecEngine drives an external stylesheet compiler (lessc by default) over
// stdin/stdout. CopyEngine returns sources unchanged and is meant for trees
// that only need mirroring, and for tests.
package transform
