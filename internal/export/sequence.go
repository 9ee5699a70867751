package export

import (
	"errors"
	"image"
	"runtime"
	"sync"
)

// Sequence writes numbered PNG frames from a fixed set of workers. Encoding
// dominates the cost of a PNG export, so frames are captured in order and
// compressed concurrently.
type Sequence struct {
	dir   string
	jobs  chan job
	wg    sync.WaitGroup
	mu    sync.Mutex
	errs  []error
	paths []string
}

type job struct {
	i   int
	img image.Image
}

// NewSequence starts workers writing into dir. Workers <= 0 uses GOMAXPROCS.
func NewSequence(dir string, workers int) *Sequence {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	s := &Sequence{dir: dir, jobs: make(chan job, workers)}
	s.wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer s.wg.Done()
			for j := range s.jobs {
				path, err := WritePNG(s.dir, j.i, j.img)
				s.mu.Lock()
				if err != nil {
					s.errs = append(s.errs, err)
				} else {
					s.paths = append(s.paths, path)
				}
				s.mu.Unlock()
			}
		}()
	}
	return s
}

// Write queues frame i. It blocks while every worker is busy. img must not
// be modified afterwards.
func (s *Sequence) Write(i int, img image.Image) {
	s.jobs <- job{i: i, img: img}
}

// Close waits for queued frames and returns every write error joined.
func (s *Sequence) Close() error {
	close(s.jobs)
	s.wg.Wait()
	return errors.Join(s.errs...)
}

// Written is the number of frames on disk. Valid after Close.
func (s *Sequence) Written() int { return len(s.paths) }
