// Package fifo implements the single-producer/single-consumer ring buffer
// of 32-bit UMP words that sits between SendUMP callers and the tick
// worker. The producer (any goroutine calling SendUMP) and the consumer
// (the tick worker) never need a lock: the write cursor is only published,
// via an atomic store, once a full message has been copied in, and the
// read cursor is only ever touched by the consumer.
package fifo
