package dashboard

import (
	"sync"
	"time"

	"github.com/IshaanNene/knowledge-aggregator/internal/pipeline"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Job states.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobState is the JSON view of a job.
type JobState struct {
	ID           string             `json:"id"`
	Topics       []string           `json:"topics"`
	Status       string             `json:"status"`
	CurrentTopic string             `json:"current_topic,omitempty"`
	Stage        string             `json:"stage,omitempty"`
	Progress     int                `json:"progress"`
	Results      []*types.RunResult `json:"results"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
}

// Job tracks one dashboard-initiated batch. It is the pipeline.Observer
// for every topic in the batch.
type Job struct {
	mu        sync.Mutex
	state     JobState
	topicIdx  int
	stageDone int
}

func newJob(id string, topics []string) *Job {
	return &Job{state: JobState{
		ID:        id,
		Topics:    topics,
		Status:    JobRunning,
		Results:   []*types.RunResult{},
		StartedAt: time.Now(),
	}}
}

// Snapshot copies the job state under the lock.
func (j *Job) Snapshot() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	st := j.state
	st.Topics = append([]string(nil), j.state.Topics...)
	st.Results = append([]*types.RunResult{}, j.state.Results...)
	return st
}

func (j *Job) beginTopic(i int, topic string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.topicIdx = i
	j.stageDone = 0
	j.state.CurrentTopic = topic
	j.updateProgress()
}

func (j *Job) addResult(res *types.RunResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state.Results = append(j.state.Results, res)
	j.stageDone = len(pipeline.Stages)
	j.updateProgress()
}

func (j *Job) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.state.FinishedAt = &now
	j.state.Progress = 100
	j.state.Stage = ""
	j.state.CurrentTopic = ""
	j.state.Status = JobCompleted
	for _, r := range j.state.Results {
		if r != nil && r.Failed() {
			j.state.Status = JobFailed
		}
	}
}

// finishedAt reports when the job ended, if it has.
func (j *Job) finishedAt() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.FinishedAt == nil {
		return time.Time{}, false
	}
	return *j.state.FinishedAt, true
}

func (j *Job) updateProgress() {
	total := len(j.state.Topics) * len(pipeline.Stages)
	if total == 0 {
		return
	}
	done := j.topicIdx*len(pipeline.Stages) + j.stageDone
	j.state.Progress = done * 100 / total
}

// StageStarted implements pipeline.Observer.
func (j *Job) StageStarted(_ string, stage pipeline.Stage) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state.Stage = string(stage)
}

// StageFinished implements pipeline.Observer.
func (j *Job) StageFinished(_ string, _ pipeline.Stage, _ int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stageDone++
	j.updateProgress()
}
