package wire

// FDQueue is a FIFO of fds received through SCM_RIGHTS.
type FDQueue struct {
	fds []int
}

func (q *FDQueue) Push(fds ...int) {
	q.fds = append(q.fds, fds...)
}

func (q *FDQueue) NextFD() (int, bool) {
	if len(q.fds) == 0 {
		return -1, false
	}
	fd := q.fds[0]
	q.fds = q.fds[1:]
	return fd, true
}

func (q *FDQueue) Len() int {
	return len(q.fds)
}

// Drain returns and forgets every queued fd.
func (q *FDQueue) Drain() []int {
	out := q.fds
	q.fds = nil
	return out
}
