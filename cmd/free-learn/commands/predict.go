package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/drakos74/free-learn/internal/emoji"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/train"
)

var predictDuration time.Duration

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Train on the recorded examples and predict new frames",
	Long: `Trains the classifier on the examples of the configured storage
and prints the predicted label for every captured frame.

Examples:
  free-learn predict --source screen --rect 0,0,640,480 --duration 10s
  free-learn predict --source dir --dir data/test -c doodle.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		labels, err := cfg.LabelSet()
		if err != nil {
			return err
		}
		source, err := newSource(sourceKind, sourceDir, sourceRect, labels, -1)
		if err != nil {
			return err
		}
		s, closer, err := newSession(cfg, source)
		if err != nil {
			return err
		}
		defer closer()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		fmt.Printf("examples = %v %v\n", s.Labels(), s.Counts())
		if err := s.Train(ctx, train.Multi(train.LogSink, progress(cfg.Train))); err != nil {
			return err
		}
		err = s.StartPredicting(ctx, func(p model.Prediction) {
			fmt.Printf("%s %s\n", p.Time.Format(time.StampMilli), emoji.Prediction(p))
		})
		if err != nil {
			return err
		}
		select {
		case <-time.After(predictDuration):
		case <-ctx.Done():
		}
		s.StopPredicting()
		return nil
	},
}

func init() {
	predictCmd.Flags().DurationVarP(&predictDuration, "duration", "d", 10*time.Second, "prediction duration")
	predictCmd.Flags().StringVar(&sourceKind, "source", "screen", "frame source: screen or dir")
	predictCmd.Flags().StringVar(&sourceDir, "dir", "", "image directory for the dir source")
	predictCmd.Flags().StringVar(&sourceRect, "rect", "", "screen region as x0,y0,x1,y1 (whole screen if empty)")
}
