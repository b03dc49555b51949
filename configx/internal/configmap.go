package internal

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/core/retry"
)

// ConfigMapOptions configures a Kubernetes ConfigMap source.
type ConfigMapOptions struct {
	Namespace    string               // Namespace of the ConfigMap (default: "default")
	Client       kubernetes.Interface // Client to use; nil builds one from the in-cluster config
	Logger       log.Logger           // Logger for watch events
	RetryBackoff time.Duration        // Wait before re-establishing a broken watch (default: 5s)
	LoadRetry    retry.Config         // Retries of a failed Get; zero uses retry.DefaultConfig()
}

// ConfigMapSource loads configuration from a Kubernetes ConfigMap.
// Data keys ending in .yaml or .yml are parsed as documents and merged in;
// other keys are used as-is.
type ConfigMapSource struct {
	name      string
	namespace string
	client    kubernetes.Interface
	logger    log.Logger
	backoff   time.Duration
	loadRetry retry.Config
}

// NewConfigMapSource creates a ConfigMap source.
func NewConfigMapSource(name string, opts ConfigMapOptions) (Source, error) {
	if name == "" {
		return nil, fmt.Errorf("configmap name is required")
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "default"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = 5 * time.Second
	}

	loadRetry := opts.LoadRetry
	if loadRetry.MaxAttempts == 0 {
		loadRetry = retry.DefaultConfig()
	}

	client := opts.Client
	if client == nil {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create Kubernetes config: %w", err)
		}
		client, err = kubernetes.NewForConfig(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
		}
	}

	return &ConfigMapSource{
		name:      name,
		namespace: namespace,
		client:    client,
		logger:    logger,
		backoff:   backoff,
		loadRetry: loadRetry,
	}, nil
}

// Load fetches the ConfigMap. A missing ConfigMap yields an empty snapshot.
// Failed requests are retried unless the API server denied them.
func (s *ConfigMapSource) Load(ctx context.Context) (map[string]string, error) {
	var data map[string]string
	err := retry.Do(ctx, s.loadRetry, func() error {
		cm, err := s.client.CoreV1().ConfigMaps(s.namespace).Get(ctx, s.name, metav1.GetOptions{})
		switch {
		case err == nil:
			data = cm.Data
			return nil
		case apierrors.IsNotFound(err):
			data = nil
			return nil
		case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
			return retry.Permanent(err)
		default:
			s.logger.Debug("ConfigMap get failed",
				log.Str("name", s.name),
				log.Str("namespace", s.namespace),
				log.Str("error", err.Error()))
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get configmap %s/%s: %w", s.namespace, s.name, err)
	}
	return s.flatten(data), nil
}

// Watch publishes the ConfigMap data on every add or modify event and an
// empty snapshot on delete. Broken watches are re-established after a backoff.
func (s *ConfigMapSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	ch := make(chan map[string]string)
	go func() {
		defer close(ch)
		for {
			if ctx.Err() != nil {
				return
			}
			watcher, err := s.client.CoreV1().ConfigMaps(s.namespace).Watch(ctx, metav1.ListOptions{
				FieldSelector: fmt.Sprintf("metadata.name=%s", s.name),
			})
			if err != nil {
				s.logger.Error(err, "failed to create ConfigMap watcher",
					log.Str("name", s.name),
					log.Str("namespace", s.namespace))
			} else if !s.consume(ctx, watcher, ch) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.backoff):
			}
		}
	}()
	return ch, nil
}

// consume drains one watch. It returns false when ctx is done.
func (s *ConfigMapSource) consume(ctx context.Context, watcher watch.Interface, ch chan<- map[string]string) bool {
	defer watcher.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-watcher.ResultChan():
			if !ok {
				s.logger.Warn("ConfigMap watcher channel closed",
					log.Str("name", s.name),
					log.Str("namespace", s.namespace))
				return true
			}

			var data map[string]string
			switch event.Type {
			case watch.Added, watch.Modified:
				cm, ok := event.Object.(*corev1.ConfigMap)
				if !ok {
					continue
				}
				s.logger.Debug("ConfigMap updated",
					log.Str("name", cm.Name),
					log.Str("namespace", cm.Namespace),
					log.Int("data_keys", len(cm.Data)))
				data = s.flatten(cm.Data)
			case watch.Deleted:
				s.logger.Info("ConfigMap deleted",
					log.Str("name", s.name),
					log.Str("namespace", s.namespace))
				data = make(map[string]string)
			default:
				s.logger.Warn("ConfigMap watcher event ignored",
					log.Str("name", s.name),
					log.Str("type", string(event.Type)))
				continue
			}

			select {
			case ch <- data:
			case <-ctx.Done():
				return false
			}
		}
	}
}

func (s *ConfigMapSource) flatten(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for key, value := range data {
		switch strings.ToLower(path.Ext(key)) {
		case ".yaml", ".yml":
			parsed, err := ParseYAML([]byte(value))
			if err != nil {
				s.logger.Warn("skipping unparsable ConfigMap document",
					log.Str("name", s.name),
					log.Str("key", key))
				continue
			}
			for k, v := range parsed {
				out[k] = v
			}
		default:
			out[key] = value
		}
	}
	return out
}
