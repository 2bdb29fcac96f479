package pipeline

// Stage names one step of a run.
type Stage string

const (
	StageSearch    Stage = "search"
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
	StageReport    Stage = "report"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageSearch, StageExtract, StageSummarize, StageReport}

// Observer receives progress callbacks from a run. count is the number of
// items the stage produced.
type Observer interface {
	StageStarted(topic string, stage Stage)
	StageFinished(topic string, stage Stage, count int)
}

type nopObserver struct{}

func (nopObserver) StageStarted(string, Stage) {}
func (nopObserver) StageFinished(string, Stage, int) {}
