package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"

	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

const barTemplate = `{{ string . "prefix" }} {{ bar . }} {{ counters . }} {{ percent . }} | ETA {{ rtime . "%s" }}`

type progressEvent struct {
	current int
	total   int
	stage   string
}

// runWithProgress runs work on a worker goroutine while another one renders the
// progress it reports. Both stop when ctx is cancelled.
func runWithProgress(ctx context.Context, logger interfaces.LoggerService, work func(ctx context.Context, onProgress shared.ProgressFunc) error) error {
	events := make(chan progressEvent, 64)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		return work(gctx, func(current, total int, stage string) {
			select {
			case events <- progressEvent{current: current, total: total, stage: stage}:
			case <-gctx.Done():
			}
		})
	})

	g.Go(func() error {
		renderer := &progressRenderer{logger: logger, tty: shared.IsTTY()}
		for event := range events {
			renderer.update(event)
		}
		renderer.finish()
		return nil
	})

	return g.Wait()
}

// progressRenderer shows one bar per stage on a terminal and a log line per stage otherwise
type progressRenderer struct {
	logger interfaces.LoggerService
	tty    bool
	stage  string
	bar    *pb.ProgressBar
}

func (r *progressRenderer) update(event progressEvent) {
	if event.stage != r.stage {
		r.finish()
		r.stage = event.stage
		if r.tty {
			r.bar = pb.New(event.total)
			r.bar.SetWriter(os.Stdout)
			r.bar.SetTemplateString(barTemplate)
			r.bar.Set("prefix", fmt.Sprintf("%-18s", event.stage))
			r.bar.Start()
		} else {
			r.logger.Info("%s (%d)", event.stage, event.total)
		}
	}
	if r.bar != nil {
		r.bar.SetTotal(int64(event.total))
		r.bar.SetCurrent(int64(event.current))
	}
}

func (r *progressRenderer) finish() {
	if r.bar != nil {
		r.bar.Finish()
		r.bar = nil
	}
}
