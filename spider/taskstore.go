package spider

import "fmt"

// TaskStore is a global instace
var (
	TaskStore = &taskStore{
		List: []*Task{},
		Hash: map[string]*Task{},
	}
)

type taskStore struct {
	List []*Task
	Hash map[string]*Task
}

func (c *taskStore) Add(task *Task) {
	if _, ok := c.Hash[task.Name]; ok {
		for i, t := range c.List {
			if t.Name == task.Name {
				c.List[i] = task
			}
		}
	} else {
		c.List = append(c.List, task)
	}

	c.Hash[task.Name] = task
}

// Select returns the named tasks in the given order, or every task when
// names is empty.
func (c *taskStore) Select(names ...string) ([]*Task, error) {
	if len(names) == 0 {
		return append([]*Task(nil), c.List...), nil
	}

	tasks := make([]*Task, 0, len(names))
	for _, name := range names {
		t, ok := c.Hash[name]
		if !ok {
			return nil, fmt.Errorf("unknown task %q", name)
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}
