package main

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/vcrobe/morph/errors"
	"github.com/vcrobe/morph/runtime"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every component once and write the page",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		var (
			mu     sync.Mutex
			failed []error
		)
		errors.SetHandler(errors.HandlerFunc(func(e *errors.Error) {
			(&errors.LogHandler{Logger: logger}).HandleError(e)
			mu.Lock()
			failed = append(failed, e)
			mu.Unlock()
		}))
		defer errors.SetHandler(nil)

		sched := runtime.NewManualScheduler()
		p, err := loadPage(cfg, sched, nil, logger)
		if err != nil {
			return err
		}
		frames := sched.Flush()
		logger.Debug("frames flushed", "count", frames)

		if len(failed) > 0 {
			return failed[0]
		}
		return p.writeOutput(cfg.Output, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
