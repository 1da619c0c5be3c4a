package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drakos74/free-learn/internal/config"
	"github.com/drakos74/free-learn/internal/emoji"
	"github.com/drakos74/free-learn/internal/frame"
	"github.com/drakos74/free-learn/internal/model"
	"github.com/drakos74/free-learn/internal/session"
	"github.com/drakos74/free-learn/internal/store"
	"github.com/drakos74/free-learn/internal/train"
)

var (
	trainData       string
	testData        string
	validationSplit float64
	trees           int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train on a directory of labeled images",
	Long: `Imports the labeled images of a directory, trains the classifier
and evaluates it on a test directory, or on a validation split of the data.

Examples:
  free-learn train --data data/train --test data/test
  free-learn train --data data/train --validation 0.2 --trees 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		labels, err := cfg.LabelSet()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s, closer, err := importData(ctx, cfg, trainData)
		if err != nil {
			return err
		}
		defer closer()
		extractor := frame.NewPixelExtractor(cfg.Frame.Size, cfg.Frame.Gray)
		fmt.Printf("examples = %v %v\n", s.Labels(), s.Counts())

		dataset := s.Dataset()
		validation := store.Dataset{Classes: labels.Size()}
		if testData != "" {
			validation, err = load(ctx, testData, labels, extractor)
			if err != nil {
				return err
			}
		} else if validationSplit > 0 {
			dataset, validation = train.Split(dataset, validationSplit)
		}

		classifier, err := train.Train(ctx, dataset, cfg.Train, train.Multi(train.LogSink, progress(cfg.Train)))
		if err != nil {
			return err
		}

		if validation.Size() == 0 {
			return nil
		}
		evaluation, err := train.Evaluate(classifier, validation)
		if err != nil {
			return err
		}
		fmt.Printf("evaluation = %s\n", evaluation)
		if trees > 0 {
			accuracy, err := train.Baseline(dataset, validation, trees)
			if err != nil {
				return err
			}
			fmt.Printf("baseline = %d trees accuracy:%.4f\n", trees, accuracy)
		}
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainData, "data", "data/train", "directory of the training images")
	trainCmd.Flags().StringVar(&testData, "test", "", "directory of the test images")
	trainCmd.Flags().Float64Var(&validationSplit, "validation", 0, "fraction of the data kept for validation, if no test directory is given")
	trainCmd.Flags().IntVar(&trees, "trees", 0, "number of trees for the random forest baseline, disabled if 0")
}

// importData opens a session whose dataset is replaced by the labeled images of the directory,
// so that repeated runs over the same data do not accumulate duplicates.
func importData(ctx context.Context, cfg config.Config, path string) (*session.Session, func(), error) {
	labels, err := cfg.LabelSet()
	if err != nil {
		return nil, nil, err
	}
	dir, err := frame.NewDirectory(path, labels)
	if err != nil {
		return nil, nil, err
	}
	examples, err := dir.Examples(ctx, frame.NewPixelExtractor(cfg.Frame.Size, cfg.Frame.Gray))
	if err != nil {
		return nil, nil, err
	}
	s, closer, err := newSession(cfg, dir)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Replace(examples); err != nil {
		closer()
		return nil, nil, err
	}
	return s, closer, nil
}

// load embeds the labeled images of a directory into a new dataset.
func load(ctx context.Context, path string, labels model.Labels, extractor model.FeatureExtractor) (store.Dataset, error) {
	dir, err := frame.NewDirectory(path, labels)
	if err != nil {
		return store.Dataset{}, err
	}
	examples, err := dir.Examples(ctx, extractor)
	if err != nil {
		return store.Dataset{}, err
	}
	s := store.New(labels)
	for _, e := range examples {
		if err := s.Add(e.Embedding, e.Label); err != nil {
			return store.Dataset{}, err
		}
	}
	return s.View(), nil
}

// progress prints the last batch of every epoch.
func progress(cfg train.Config) train.Sink {
	var previous model.Progress
	return train.SinkFunc(func(p model.Progress) {
		if p.Batch == p.Batches-1 {
			fmt.Printf("%d/%d %s\n", p.Epoch+1, cfg.Epochs, emoji.Progress(p, previous))
			previous = p
		}
	})
}
