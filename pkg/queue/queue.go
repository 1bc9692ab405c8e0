package queue

// Queue represents a basic bounded queue.
type Queue interface {
	// Enqueue adds an item without blocking. It fails when the queue is full.
	Enqueue(item interface{}) error
	Dequeue() interface{}
	Size() int
	ReadAllMessages() []interface{}
	ClearQueue()
}
