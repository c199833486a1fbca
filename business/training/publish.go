package training

import (
	"context"
	"fmt"

	"fairFin/business/artifact"
)

// Encode serializes a result into named artifacts.
func (r *Result) Encode() (map[string][]byte, error) {
	out := make(map[string][]byte, len(artifact.Names))

	var err error
	if out[artifact.NameModel], err = artifact.EncodeModel(r.Pipeline); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	if out[artifact.NameExplainer], err = artifact.EncodeExplainer(r.Explainer, r.Token); err != nil {
		return nil, fmt.Errorf("encode explainer: %w", err)
	}
	if out[artifact.NameFeatureNames], err = artifact.EncodeFeatureNames(r.FeatureNames); err != nil {
		return nil, fmt.Errorf("encode feature names: %w", err)
	}
	if out[artifact.NameSchema], err = artifact.EncodeSchema(r.Schema); err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return out, nil
}

// Publish writes every artifact of r under version. The model goes last so
// a new version has no model until the rest is in place.
func Publish(ctx context.Context, store artifact.Store, version string, r *Result) error {
	encoded, err := r.Encode()
	if err != nil {
		return err
	}
	return Copy(ctx, store, version, encoded)
}

// Copy writes pre-encoded artifacts, model last.
func Copy(ctx context.Context, store artifact.Store, version string, encoded map[string][]byte) error {
	if _, ok := encoded[artifact.NameModel]; !ok {
		return fmt.Errorf("refusing to publish version %q without %s", version, artifact.NameModel)
	}
	for _, name := range []string{artifact.NameExplainer, artifact.NameFeatureNames, artifact.NameSchema, artifact.NameModel} {
		data, ok := encoded[name]
		if !ok {
			continue
		}
		if err := store.Put(ctx, version, name, data); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
	}
	return nil
}
