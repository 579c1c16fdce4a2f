// Package profile provides optional runtime profiling for the macro
// interpreter.
//
// Profiling integrates [github.com/pkg/profile] and is compiled in only when
// building with the "pprof" tag:
//
//	go build -tags pprof -o macro .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread, and trace. Profiles are written to [Profiler.Path] with names
// matching the mode (e.g., cpu.pprof) and can be inspected with:
//
//	go tool pprof -http=: ./macro ~/.cache/macro/pprof/cpu.pprof
//
// A typical use is profiling a long-running script:
//
//	macro --pprof-mode=cpu run loop.macro
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
