package driver

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageLoad Stage = iota + 1
	StageDecode
	StageCheck
	StageMono
)

// Status qualifies a stage event.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress notification. File is empty for whole-run
// stage transitions (checking and scheduling cover every file at once).
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// emit blocks until the consumer takes the event; the progress UI reads
// continuously, so sends only stall when rendering does.
func emit(ch chan<- Event, file string, stage Stage, status Status) {
	if ch == nil {
		return
	}
	ch <- Event{File: file, Stage: stage, Status: status}
}
