package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/phanxgames/popstage"
	"github.com/phanxgames/popstage/ecs"
	"github.com/spf13/cobra"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

var (
	runDebug  bool
	runScript string
	runPick   []string
	runExit   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the desk scene window",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "log snapshots, retargets and frame stats to stderr")
	runCmd.Flags().StringVar(&runScript, "script", "", "replay a JSON event script in the window")
	runCmd.Flags().BoolVar(&runExit, "exit", false, "close the window when the script finishes")
	runCmd.Flags().StringSliceVar(&runPick, "pick", nil, "files to pass through the file picker at startup")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runDebug {
		cfg.Debug = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	world := donburi.NewWorld()
	stage, err := popstage.NewStage(cfg, popstage.WithNotifier(ecs.NewDonburiNotifier(world)))
	if err != nil {
		return err
	}
	defer stage.Close()
	obs := ecs.NewDonburiObserver(world, stage.Store())
	defer obs.Close()

	ecs.NoticeEventType.Subscribe(world, func(w donburi.World, n popstage.Notice) {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", n.Kind, n.Message)
	})

	ecs.SnapshotEventType.Subscribe(world, func(w donburi.World, s *popstage.Snapshot) {
		if cfg.Debug {
			fmt.Fprintf(cmd.ErrOrStderr(), "state v%d route=%s\n", s.Version, s.Route)
		}
	})

	if len(runPick) > 0 {
		files, err := popstage.FilesFromPaths(runPick)
		if err != nil {
			return err
		}
		stage.PickFiles(files)
	}

	rc := popstage.RunConfig{
		Context: ctx,
		UpdateFunc: func() error {
			events.ProcessAllEvents(world)
			return ctx.Err()
		},
	}
	if runScript != "" {
		r, err := popstage.LoadScriptFile(runScript)
		if err != nil {
			return err
		}
		r.SetContext(ctx)
		rc.Script = r
		rc.ExitOnScriptDone = runExit
	}

	err = popstage.Run(stage, rc)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
