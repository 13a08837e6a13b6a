package poster

import (
	"fmt"

	"github.com/SaiNageswarS/threads-poster/caption"
	"github.com/SaiNageswarS/threads-poster/cloud"
)

// Stage names the step a run was in when it stopped.
type Stage string

const (
	StageList            Stage = "list"
	StageSelect          Stage = "select"
	StagePresign         Stage = "presign"
	StageCreateContainer Stage = "create_container"
	StageMediaWait       Stage = "media_wait"
	StagePublish         Stage = "publish"
	StageDelete          Stage = "delete"
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Report records what a run did. PostID is set only once the image is
// public; Deleted only once the source object is gone.
type Report struct {
	RunID       string
	Object      cloud.ObjectRef
	Caption     caption.Result
	ContainerID string
	PostID      string
	Deleted     bool
	DeleteErr   error
	URLRevoked  bool
	FailedStage Stage
	Err         error
}

// Published reports whether the image reached Threads.
func (r *Report) Published() bool { return r.PostID != "" }

func (r *Report) fail(stage Stage, err error) error {
	stageErr := &StageError{Stage: stage, Err: err}
	r.FailedStage = stage
	r.Err = stageErr
	return stageErr
}
