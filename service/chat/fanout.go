package chat

import (
	"sync"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout is a bounded worker pool for push delivery, so a room with
// many slow clients never stalls the caller's request path.
type Fanout struct {
	jobs      chan fanoutJob
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 1024
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	f.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer f.wg.Done()
			for job := range f.jobs {
				for _, c := range job.conns {
					// Slow client: frame is dropped, the client
					// reconciles via the history read path.
					c.TrySend(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast queues a delivery to the given connections. Blocks only
// when the job queue itself is full.
func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}

// Close drains the pool. Pending jobs are still delivered.
func (f *Fanout) Close() {
	f.closeOnce.Do(func() { close(f.jobs) })
	f.wg.Wait()
}
