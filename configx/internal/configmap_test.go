package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"go.eggybyte.com/settingsx/core/retry"
)

var fastRetry = retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}

func newConfigMap(data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "app-settings", Namespace: "apps"},
		Data:       data,
	}
}

func TestNewConfigMapSource_RequiresName(t *testing.T) {
	_, err := NewConfigMapSource("", ConfigMapOptions{Client: fake.NewSimpleClientset()})
	assert.Error(t, err)
}

func TestNewConfigMapSource_DefaultNamespace(t *testing.T) {
	src, err := NewConfigMapSource("app-settings", ConfigMapOptions{Client: fake.NewSimpleClientset()})
	require.NoError(t, err)
	assert.Equal(t, "default", src.(*ConfigMapSource).namespace)
}

func TestConfigMapSource_Load(t *testing.T) {
	client := fake.NewSimpleClientset(newConfigMap(map[string]string{
		"Sample__SampleKey": "one",
		"appsettings.yaml":  "sample:\n  samplenumber: 2\n",
		"broken.yml":        "a: [unclosed",
	}))

	src, err := NewConfigMapSource("app-settings", ConfigMapOptions{Namespace: "apps", Client: client})
	require.NoError(t, err)

	config, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Sample__SampleKey":   "one",
		"sample.samplenumber": "2",
	}, config)
}

func TestConfigMapSource_Load_NotFound(t *testing.T) {
	src, err := NewConfigMapSource("missing", ConfigMapOptions{Client: fake.NewSimpleClientset()})
	require.NoError(t, err)

	config, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, config)
}

func TestConfigMapSource_Load_RetriesTransientErrors(t *testing.T) {
	client := fake.NewSimpleClientset(newConfigMap(map[string]string{"Sample__SampleKey": "one"}))
	calls := 0
	client.PrependReactor("get", "configmaps", func(action k8stesting.Action) (bool, runtime.Object, error) {
		calls++
		if calls < 3 {
			return true, nil, apierrors.NewServiceUnavailable("apiserver restarting")
		}
		return false, nil, nil
	})

	src, err := NewConfigMapSource("app-settings", ConfigMapOptions{Namespace: "apps", Client: client, LoadRetry: fastRetry})
	require.NoError(t, err)

	config, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Sample__SampleKey": "one"}, config)
	assert.Equal(t, 3, calls)
}

func TestConfigMapSource_Load_ForbiddenIsNotRetried(t *testing.T) {
	client := fake.NewSimpleClientset()
	calls := 0
	client.PrependReactor("get", "configmaps", func(action k8stesting.Action) (bool, runtime.Object, error) {
		calls++
		return true, nil, apierrors.NewForbidden(schema.GroupResource{Resource: "configmaps"}, "app-settings", errors.New("rbac denied"))
	})

	src, err := NewConfigMapSource("app-settings", ConfigMapOptions{Namespace: "apps", Client: client, LoadRetry: fastRetry})
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apierrors.IsForbidden(err))
	assert.Equal(t, 1, calls)
}

func TestConfigMapSource_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := fake.NewSimpleClientset()
	src, err := NewConfigMapSource("app-settings", ConfigMapOptions{
		Namespace:    "apps",
		Client:       client,
		RetryBackoff: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ch, err := src.Watch(ctx)
	require.NoError(t, err)

	// The fake watch is registered asynchronously; keep creating until observed.
	cms := client.CoreV1().ConfigMaps("apps")
	require.Eventually(t, func() bool {
		_ = cms.Delete(ctx, "app-settings", metav1.DeleteOptions{})
		_, err := cms.Create(ctx, newConfigMap(map[string]string{"sample.samplekey": "one"}), metav1.CreateOptions{})
		if err != nil {
			return false
		}
		for {
			select {
			case data := <-ch:
				if data["sample.samplekey"] == "one" {
					return true
				}
			case <-time.After(50 * time.Millisecond):
				return false
			}
		}
	}, 5*time.Second, 10*time.Millisecond)

	_, err = cms.Update(ctx, newConfigMap(map[string]string{"sample.samplekey": "two"}), metav1.UpdateOptions{})
	require.NoError(t, err)

	select {
	case data := <-ch:
		assert.Equal(t, "two", data["sample.samplekey"])
	case <-time.After(5 * time.Second):
		t.Fatal("no update observed")
	}
}
