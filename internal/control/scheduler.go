package control

import (
	"fmt"
	"time"
)

// Task is one entry in the scheduler's ordered list.
type Task struct {
	Name   string
	Period time.Duration
	Run    func(now time.Time)

	lastRun time.Time
}

// Scheduler is a cooperative, single-threaded dispatcher. Tasks are held in
// strictly increasing period order and evaluated sequentially with an early
// stop: a slower task never runs in a pass where a faster task was not also
// eligible. Downstream logic relies on this coupling (the band checkpoint
// assumes a sample was just taken), so it is a declared policy here, not an
// accident of control flow.
type Scheduler struct {
	tasks []*Task
}

// NewScheduler validates the task list and returns a scheduler. Periods must
// be positive and strictly increasing; anything else is a configuration fault.
func NewScheduler(tasks ...*Task) (*Scheduler, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("scheduler: no tasks configured")
	}
	var prev time.Duration
	for _, task := range tasks {
		if task.Run == nil {
			return nil, fmt.Errorf("scheduler: task %q has no action", task.Name)
		}
		if task.Period <= prev {
			return nil, fmt.Errorf("scheduler: task %q period %v must be greater than %v (periods must be strictly increasing)",
				task.Name, task.Period, prev)
		}
		prev = task.Period
	}
	return &Scheduler{tasks: tasks}, nil
}

// Tick evaluates the task list in order, running each task whose period has
// elapsed and stopping at the first that is not yet due. Each task records
// its own last-run time, updated only when it actually executes. Returns the
// names of the tasks that ran, in order.
//
// All lastRun fields start at the zero time, so the first Tick runs every
// task once in a single pass.
func (s *Scheduler) Tick(now time.Time) []string {
	var ran []string
	for _, task := range s.tasks {
		if now.Sub(task.lastRun) < task.Period {
			break
		}
		task.lastRun = now
		task.Run(now)
		ran = append(ran, task.Name)
	}
	return ran
}
