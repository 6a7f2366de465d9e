package exporter

import "github.com/apex/log"

// ProgressEvent 匯出進度事件
type ProgressEvent struct {
	Percent int
	Stage   string // "summary"、店家名稱或 "done"
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: min(max(percent, 0), 100),
		Stage:   stage,
	})
}

// LogProgress 以 debug 日誌輸出匯出進度
func LogProgress(path string) func(ProgressEvent) {
	ctx := log.WithField("file", path)
	return func(e ProgressEvent) {
		ctx.WithFields(log.Fields{
			"percent": e.Percent,
			"stage":   e.Stage,
		}).Debug("匯出進度")
	}
}
