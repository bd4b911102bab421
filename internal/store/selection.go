package store

import "sync"

// ProcessingState is the transient per-order outcome of the last bulk send.
type ProcessingState string

const (
	ProcessingIdle    ProcessingState = "idle"
	ProcessingActive  ProcessingState = "processing"
	ProcessingSuccess ProcessingState = "success"
	ProcessingError   ProcessingState = "error"
)

// Selection tracks which orders are checked for bulk action plus the
// processing status of the last send. It is in-memory only: processing
// status is UI feedback, not business state.
type Selection struct {
	mu         sync.Mutex
	ids        []string
	member     map[string]bool
	processing map[string]ProcessingState
}

func NewSelection() *Selection {
	return &Selection{
		member:     make(map[string]bool),
		processing: make(map[string]ProcessingState),
	}
}

// Toggle adds the id to the selection, or removes it if already present.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.member[id] {
		delete(s.member, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return
	}
	s.member[id] = true
	s.ids = append(s.ids, id)
}

// SelectAll replaces the selection with the given ids.
func (s *Selection) SelectAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.member = make(map[string]bool)
	for _, id := range ids {
		if !s.member[id] {
			s.member[id] = true
			s.ids = append(s.ids, id)
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.member = make(map[string]bool)
}

// Selected returns the selected ids in selection order.
func (s *Selection) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Remove drops an id from the selection and its processing entry. Called by
// the store when an order is deleted so the selection stays a subset of
// existing orders.
func (s *Selection) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.member[id] {
		delete(s.processing, id)
		return
	}
	delete(s.member, id)
	delete(s.processing, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// SetProcessing marks every given id as processing, resetting previous
// outcomes for a new bulk run.
func (s *Selection) SetProcessing(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = make(map[string]ProcessingState)
	for _, id := range ids {
		s.processing[id] = ProcessingActive
	}
}

func (s *Selection) MarkSuccess(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing[id] = ProcessingSuccess
}

func (s *Selection) MarkError(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing[id] = ProcessingError
}

// ProcessingSnapshot returns a copy of the processing status map.
func (s *Selection) ProcessingSnapshot() map[string]ProcessingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]ProcessingState, len(s.processing))
	for k, v := range s.processing {
		out[k] = v
	}
	return out
}
