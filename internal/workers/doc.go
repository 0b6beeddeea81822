/*
Package workers provides utilities for determining how many crawl pipelines
to run concurrently in containerized environments.

When running in a container, the number of available CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit,
while runtime.NumCPU() still reports the host machine. The helpers here size
worker pools from GOMAXPROCS so the crawler respects its actual allocation.

A crawl pipeline (fetch thumbnail, hash it, write fingerprints) is mostly
I/O-bound, so the service uses ForIO when CRAWL_CONCURRENCY=0 asks for
automatic sizing:

	concurrency := workers.ForIO(16) // at most 16 pipelines

All functions honor the CRAWL_WORKERS environment variable as an operator
override. Every function is safe for concurrent use.
*/
package workers
