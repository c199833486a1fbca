package artifact

import (
	"context"
	"errors"
)

// Artifact names inside a model version.
const (
	NameModel        = "model.json"
	NameExplainer    = "explainer.json"
	NameFeatureNames = "feature_names.json"
	NameSchema       = "schema.json"
)

// Names lists every artifact a bundle may carry, model first.
var Names = []string{NameModel, NameExplainer, NameFeatureNames, NameSchema}

var ErrNotFound = errors.New("artifact not found")

// Store reads and writes raw artifacts for a model version. An empty version
// addresses the unversioned default location.
type Store interface {
	Get(ctx context.Context, version, name string) ([]byte, error)
	Put(ctx context.Context, version, name string, data []byte) error
}
