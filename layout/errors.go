package layout

import (
	"errors"
	"fmt"
)

// Generation stages reported by GenerationError.
const (
	StageSetup    = "setup"
	StageTables   = "tables"
	StageSections = "sections"
	StageCompose  = "compose"
	StageRender   = "render"
)

// ErrNoPages is returned when a layout produced nothing to render.
var ErrNoPages = errors.New("缺少可渲染的页面")

// GenerationError aborts a whole generation call; no partial document is
// produced.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("生成文档失败（%s）: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Fail wraps err into a GenerationError for the given stage. Errors that are
// already GenerationErrors are returned unchanged.
func Fail(stage string, err error) error {
	if err == nil {
		return nil
	}
	var ge *GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return &GenerationError{Stage: stage, Err: err}
}
