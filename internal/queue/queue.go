package queue

import (
	"errors"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"fundamental/pricing/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one batch of property records
type Handler func([]models.PropertyRecord) error

// PropertyQueue represents an in-memory queue for property record batches
type PropertyQueue struct {
	items    chan []models.PropertyRecord
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []Handler
}

// NewPropertyQueue creates a new property queue with the specified buffer size
func NewPropertyQueue(bufferSize int, logger *logrus.Logger) *PropertyQueue {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &PropertyQueue{
		items:    make(chan []models.PropertyRecord, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]Handler, 0),
	}
}

// Push adds a batch of records to the queue
func (q *PropertyQueue) Push(records []models.PropertyRecord) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- records:
		q.logger.WithField("batch_size", len(records)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch
func (q *PropertyQueue) Subscribe(handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue
func (q *PropertyQueue) Start() {
	q.wg.Add(1)
	go q.process()
}

// process handles the queue processing loop
func (q *PropertyQueue) process() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case batch, ok := <-q.items:
			if !ok {
				return
			}
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers
func (q *PropertyQueue) processBatch(batch []models.PropertyRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue, prevents new items from being added and waits for
// the batch in progress to finish. Batches still buffered are dropped.
func (q *PropertyQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}

// Len returns the current number of batches in the queue
func (q *PropertyQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *PropertyQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
