package flow

// scheduler holds deferred tasks. Tasks run in FIFO order once the command
// queue is empty; it is guarded by the editor's queue mutex
type scheduler struct {
	tasks []func()
}

func (s *scheduler) schedule(task func()) {
	s.tasks = append(s.tasks, task)
}

func (s *scheduler) next() (func(), bool) {
	if len(s.tasks) == 0 {
		return nil, false
	}
	task := s.tasks[0]
	s.tasks[0] = nil
	s.tasks = s.tasks[1:]
	return task, true
}

func (s *scheduler) pending() int {
	return len(s.tasks)
}
