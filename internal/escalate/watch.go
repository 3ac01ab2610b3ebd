package escalate

import "context"

// WatchShutdown derives a child context from ctx that is also canceled the
// moment a KindTerminate or KindEvacuate escalation arrives on ch. Workers
// across the simulation use it to turn "finish current patient, then exit"
// (spec.md §5) into an ordinary ctx.Done() check at their blocking points —
// the queue Pop, the waitroom Acquire, and the service-time sleep.
//
// KindInterrupt escalations are not terminal: the watcher reads them off ch
// and discards them, so WatchShutdown suits only workers that never act on
// an interrupt. A worker that does (the specialists) reads ch itself instead.
func WatchShutdown(ctx context.Context, ch <-chan Escalation) context.Context {
	child, cancel := context.WithCancel(ctx)
	go func() {
		for {
			select {
			case <-child.Done():
				return
			case e, ok := <-ch:
				if !ok {
					cancel()
					return
				}
				if e.Kind == KindTerminate || e.Kind == KindEvacuate {
					cancel()
					return
				}
			}
		}
	}()
	return child
}
