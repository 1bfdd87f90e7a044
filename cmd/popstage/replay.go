package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/phanxgames/popstage"
	"github.com/spf13/cobra"
)

var (
	replayFrames int
	replayDebug  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay [script]",
	Short: "Run an event script headless and print the final state",
	Long: `Replay steps the stage one 60 Hz frame at a time without opening a
window. Analysis requests go to the configured endpoint and are awaited
before the next frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().IntVar(&replayFrames, "frames", 3600, "maximum frames to run")
	replayCmd.Flags().BoolVar(&replayDebug, "debug", false, "log snapshots, retargets and frame stats to stderr")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if replayDebug {
		cfg.Debug = true
	}
	r, err := popstage.LoadScriptFile(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	r.SetContext(ctx)

	out := cmd.OutOrStdout()
	clock := popstage.NewFrameClock(60)
	stage, err := popstage.NewStage(cfg,
		popstage.WithClock(clock.Now),
		popstage.WithNotifier(popstage.NotifierFunc(func(n popstage.Notice) {
			fmt.Fprintf(out, "%8v [%s] %s\n", n.At, n.Kind, n.Message)
		})),
	)
	if err != nil {
		return err
	}
	defer stage.Close()

	frames := r.RunHeadless(stage, clock, replayFrames)
	printSnapshot(cmd, stage, frames)
	return nil
}

func printSnapshot(cmd *cobra.Command, stage *popstage.Stage, frames int) {
	out := cmd.OutOrStdout()
	s := stage.Snapshot()
	fmt.Fprintf(out, "frames:    %d\n", frames)
	fmt.Fprintf(out, "version:   %d\n", s.Version)
	fmt.Fprintf(out, "route:     %s\n", s.Route)
	fmt.Fprintf(out, "theme:     %s\n", s.Theme)
	fmt.Fprintf(out, "dock open: %t\n", s.Dock.Open)
	if s.Upload != nil {
		fmt.Fprintf(out, "upload:    %s (%s) id=%s\n", s.Upload.Title, s.Upload.File.MediaType, s.Upload.ID)
	}
	for i := 0; i < len(s.Channels); i++ {
		fmt.Fprintf(out, "screen %d:  channel %d\n", i+1, s.Channel(popstage.ScreenID(i)))
	}
	cam := stage.Graph().Camera.Pose()
	fmt.Fprintf(out, "camera:    pos=%.3f rot=%.3f\n", cam.Position, cam.Rotation)
	if res := stage.LastResult(); res != nil {
		fmt.Fprintf(out, "analysis:  %s\n", res.Raw)
	}
}
