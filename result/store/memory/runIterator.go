package memory

import "github.com/brandonshearin/parsssp/result"

type runIterator struct {
	runs []*result.Run
	s    *InMemoryStore
	//keep track of the iterator's current offset within the runs slice
	currentIndex int
}

func (i *runIterator) Close() error {
	return nil
}

func (i *runIterator) Error() error {
	return nil
}

func (i *runIterator) Next() bool {
	if i.currentIndex >= len(i.runs) {
		return false
	}
	i.currentIndex++
	return true
}

func (i *runIterator) Run() *result.Run {
	/*a concurrent SaveRun may replace the entry behind this pointer, so hand out
	a copy taken under the read lock*/
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	return i.runs[i.currentIndex-1].Clone()
}
