// Package concurrent holds the lock-free queues at the system's two traffic
// boundaries and the actor primitive that owns each boundary's single
// consumer.
//
// QueueMPSC carries inbound commands from any number of session goroutines to
// the one dispatcher; QueueMPMC carries executions from the matching workers
// out to the processor. Neither queue ever takes a lock; absence of data is
// reported to the caller, which yields or sleeps instead of spinning.
package concurrent
