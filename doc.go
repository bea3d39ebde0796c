// Package pollloop implements a cooperative task scheduler for component
// runtimes whose only I/O surface is non-blocking reads/writes plus a
// blocking poll-list readiness primitive over opaque pollable handles.
//
// # Architecture Overview
//
// The repository is organized into a small set of packages:
//
//	pollloop/       Root package: PollLoop scheduler, Stream and Sink wrappers
//	├── host/       External host contract, handle table, scripted local host
//	├── wasmhost/   wazero host-module bridge exposing the contract to guests
//	├── metrics/    Prometheus instrumentation via the round observer hook
//	└── errors/     Structured error types (phase + kind)
//
// # Quick Start
//
// Drive one asynchronous computation to completion:
//
//	h := host.NewLocal()
//	in := h.NewReadable(host.Text("hello"), host.Block(), host.Text(" world"))
//
//	loop := pollloop.New(h)
//	body, err := pollloop.Run(ctx, loop, func(ctx context.Context) ([]byte, error) {
//	    return pollloop.NewStream(loop, in).ReadAll(ctx)
//	})
//
// # Scheduling Model
//
// Execution is single-threaded and strictly cooperative. Frames suspend
// only on Stream reads, Sink writes, explicit Yield, or Gather; the
// scheduler runs at most one frame at a time and resumes frames whose
// pollables were reported ready, in registration order, draining each
// round completely before invoking the readiness primitive again.
//
// There is no preemption, no cancellation of started frames, and no
// timers; a host that never reports readiness blocks the run. A host
// that reports an empty ready set violates the contract and the run
// fails with a scheduling contract violation.
//
// A PollLoop is constructed explicitly and drives one computation at a
// time; it is never installed as ambient global state.
package pollloop
