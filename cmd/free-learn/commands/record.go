package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/drakos74/free-learn/internal/config"
)

var (
	recordLabel    string
	recordDuration time.Duration
	sourceKind     string
	sourceDir      string
	sourceRect     string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record examples for a label",
	Long: `Captures frames for the given label, until the duration passes or the command is interrupted.
The examples are kept in the configured storage.

Examples:
  free-learn record --label left --source screen --rect 0,0,640,480 --duration 5s
  free-learn record --label triangle --source dir --dir data/train -c doodle.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		labels, err := cfg.LabelSet()
		if err != nil {
			return err
		}
		label, err := labels.Index(recordLabel)
		if err != nil {
			return err
		}
		source, err := newSource(sourceKind, sourceDir, sourceRect, labels, label)
		if err != nil {
			return err
		}
		s, closer, err := newSession(cfg, source)
		if err != nil {
			return err
		}
		defer closer()
		if cfg.Storage.Kind == config.StorageNone || cfg.Storage.Kind == config.StorageMemory {
			fmt.Printf("storage is '%s', the examples will not be kept\n", cfg.Storage.Kind)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		if err := s.StartRecording(ctx, label); err != nil {
			return err
		}
		select {
		case <-time.After(recordDuration):
		case <-ctx.Done():
		}
		if err := s.StopRecording(); err != nil {
			return err
		}
		fmt.Printf("examples = %v %v\n", s.Labels(), s.Counts())
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordLabel, "label", "l", "", "label of the recorded frames")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 5*time.Second, "recording duration")
	recordCmd.Flags().StringVar(&sourceKind, "source", "screen", "frame source: screen or dir")
	recordCmd.Flags().StringVar(&sourceDir, "dir", "", "image directory for the dir source")
	recordCmd.Flags().StringVar(&sourceRect, "rect", "", "screen region as x0,y0,x1,y1 (whole screen if empty)")
	_ = recordCmd.MarkFlagRequired("label")
}
