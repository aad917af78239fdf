package runner

import (
	"sync"
	"time"
)

// RoundScheduler calls the round-advance of the node every interval. It
// stops by itself once the node is decided or killed.
type RoundScheduler struct {
	sync.RWMutex

	nr         *NodeRunner
	interval   time.Duration
	running    bool
	stop       chan struct{}
	tickSignal func() // the function is called after every round-advance.
}

func NewRoundScheduler(nr *NodeRunner, interval time.Duration) *RoundScheduler {
	return &RoundScheduler{
		nr:         nr,
		interval:   interval,
		tickSignal: func() {},
	}
}

func (s *RoundScheduler) SetTickSignal(f func()) {
	s.Lock()
	defer s.Unlock()

	s.tickSignal = f
}

func (s *RoundScheduler) IsRunning() bool {
	s.RLock()
	defer s.RUnlock()

	return s.running
}

// Start is a no-op while the scheduler is running.
func (s *RoundScheduler) Start() {
	s.Lock()
	defer s.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.nr.log.Debug("round scheduler started", "interval", s.interval)

	go s.run(s.stop)
}

func (s *RoundScheduler) Stop() {
	s.Lock()
	defer s.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
}

func (s *RoundScheduler) finish(stop chan struct{}) {
	s.Lock()
	defer s.Unlock()

	// `Stop` and a new `Start` may have replaced the stop channel already
	if s.stop == stop {
		s.running = false
	}
}

func (s *RoundScheduler) run(stop chan struct{}) {
	defer s.finish(stop)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	c := s.nr.consensus
	for {
		select {
		case <-timer.C:
			if c.IsFinished() {
				s.nr.log.Debug("round scheduler finished", "state", c.State())
				return
			}

			if result, evaluated := c.Advance(); evaluated {
				s.nr.handleRoundResult(result)
			}

			s.RLock()
			signal := s.tickSignal
			s.RUnlock()
			signal()

			timer.Reset(s.interval)
		case <-stop:
			return
		}
	}
}
