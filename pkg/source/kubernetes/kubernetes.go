// Package kubernetes reads configuration entries from a Kubernetes Secret.
//
// Every key in the Secret's data becomes one entry, so a Secret holding
// AUTH_SECRET_KEY_alice and AUTH_SECRET_KEY_bob resolves to two callers.
package kubernetes

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
)

// Source reads a single Secret through a controller-runtime client.
type Source struct {
	client client.Reader
	key    types.NamespacedName
}

// New creates a Source for the Secret namespace/name.
func New(c client.Reader, namespace, name string) *Source {
	return &Source{
		client: c,
		key:    types.NamespacedName{Namespace: namespace, Name: name},
	}
}

// Entries fetches the Secret and returns its data as strings. StringData
// is merged over Data, matching how the API server would apply it.
func (s *Source) Entries(ctx context.Context) (map[string]string, error) {
	var secret corev1.Secret
	if err := s.client.Get(ctx, s.key, &secret); err != nil {
		return nil, fmt.Errorf("reading secret %s: %w", s.key, err)
	}

	out := make(map[string]string, len(secret.Data)+len(secret.StringData))
	for k, v := range secret.Data {
		out[k] = string(v)
	}
	for k, v := range secret.StringData {
		out[k] = v
	}
	return out, nil
}

// NewScheme returns a runtime scheme with the core/v1 types registered.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("adding core/v1 to scheme: %w", err)
	}
	return scheme, nil
}

// NewClient builds a controller-runtime client from the ambient
// kubeconfig or in-cluster configuration.
func NewClient() (client.Client, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubernetes config: %w", err)
	}
	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}
	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	return c, nil
}
