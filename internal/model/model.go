package model

import (
	"fmt"
	"strings"
	"time"
)

// Embedding is the fixed length feature vector extracted from a single frame.
type Embedding []float64

// Dim returns the length of the embedding.
func (e Embedding) Dim() int {
	return len(e)
}

// Label is the index of a class name within the session label set.
type Label int

// Labels is the ordered set of class names for a session.
// The set is fixed once a session starts.
type Labels []string

// NewLabels creates a label set out of the given names.
func NewLabels(names ...string) (Labels, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("at least two labels are needed, got %d: %w", len(names), InvalidConfigErr)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := strings.TrimSpace(name)
		if n == "" {
			return nil, fmt.Errorf("empty label name in %v: %w", names, InvalidConfigErr)
		}
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("duplicate label '%s': %w", n, InvalidConfigErr)
		}
		seen[n] = struct{}{}
	}
	labels := make(Labels, len(names))
	for i, name := range names {
		labels[i] = strings.TrimSpace(name)
	}
	return labels, nil
}

// Size returns the number of labels.
func (l Labels) Size() int {
	return len(l)
}

// Valid checks if the label index belongs to the set.
func (l Labels) Valid(label Label) bool {
	return label >= 0 && int(label) < len(l)
}

// Name returns the class name for the label, or an empty string if it is not part of the set.
func (l Labels) Name(label Label) string {
	if !l.Valid(label) {
		return ""
	}
	return l[label]
}

// Index returns the label for the given class name.
func (l Labels) Index(name string) (Label, error) {
	for i, n := range l {
		if strings.EqualFold(n, name) {
			return Label(i), nil
		}
	}
	return -1, fmt.Errorf("unknown label '%s' for %v: %w", name, l, InvalidLabelErr)
}

// Example pairs an embedding with its label.
type Example struct {
	Embedding Embedding `json:"embedding"`
	Label     Label     `json:"label"`
}

// Prediction is the outcome of running an embedding through a fitted classifier.
type Prediction struct {
	Label         Label     `json:"label"`
	Name          string    `json:"name"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities"`
	Time          time.Time `json:"time"`
}

func (p Prediction) String() string {
	return fmt.Sprintf("%s (%d) %.4f", p.Name, p.Label, p.Confidence)
}
