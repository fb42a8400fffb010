package job

import (
	"sync"

	"github.com/nguyentantai21042004/lecture-digest/internal/logger"
)

type implManager struct {
	pipeline *Pipeline
	slots    slots
	logger   logger.Logger

	mu      sync.RWMutex
	jobs    map[string]*Job
	order   []string
	running bool

	subMu   sync.Mutex
	subs    map[int]chan Job
	nextSub int

	wg sync.WaitGroup
}

// NewManager creates a Manager running at most maxConcurrent jobs at once.
func NewManager(p *Pipeline, maxConcurrent int, log logger.Logger) Manager {
	return &implManager{
		pipeline: p,
		slots:    newSlots(maxConcurrent),
		logger:   log,
		jobs:     make(map[string]*Job),
		subs:     make(map[int]chan Job),
	}
}
