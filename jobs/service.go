package jobs

// Name implements service.Service
func (q *Queue) Name() string {
	return "jobs"
}

// Dependencies implements service.Service
func (q *Queue) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (q *Queue) Init(args ...any) error {
	return nil
}

// Start implements service.Service
func (q *Queue) Start() error {
	return nil
}

// Stop implements service.Service
// In-flight jobs run to completion and are finished on the caller
func (q *Queue) Stop() error {
	q.Close()
	return nil
}
