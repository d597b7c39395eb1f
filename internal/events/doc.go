// Package events publishes tracker statistics changes.
//
// An [Emitter] observes engine frames, turns stats changes into [Event]
// values and hands them to a [Publisher] from its own goroutine so a slow
// backend never stalls a tick. [RedisPublisher] fans events out over redis
// pub/sub; [MemoryPublisher] keeps them in memory.
package events
