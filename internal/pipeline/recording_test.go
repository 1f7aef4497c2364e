package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/student-assessment/internal/types"
)

func countingInvoker(calls *atomic.Int32, err error) Invoker {
	return InvokerFunc(func(context.Context, *types.StudentProfile, InvokeOptions) (*types.PipelineResults, error) {
		calls.Add(1)
		if err != nil {
			return nil, err
		}
		return validResults(), nil
	})
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(testProfile(), InvokeOptions{})
	require.NoError(t, err)
	b, err := Fingerprint(testProfile(), InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Fingerprint(testProfile(), InvokeOptions{SkipActionPlan: true})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "options are part of the fingerprint")

	p := testProfile()
	p.PastActivities = "I led a robotics team."
	d, err := Fingerprint(p, InvokeOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestRecordingInvoker_Reuses(t *testing.T) {
	var calls atomic.Int32
	rec := NewRecordingInvoker(countingInvoker(&calls, nil))
	ctx := context.Background()

	first, err := rec.Invoke(ctx, testProfile(), InvokeOptions{})
	require.NoError(t, err)
	second, err := rec.Invoke(ctx, testProfile(), InvokeOptions{})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, rec.Len())

	other := testProfile()
	other.Goals = []string{"explore_interests"}
	_, err = rec.Invoke(ctx, other, InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRecordingInvoker_Concurrent(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	inner := InvokerFunc(func(context.Context, *types.StudentProfile, InvokeOptions) (*types.PipelineResults, error) {
		calls.Add(1)
		<-release
		return validResults(), nil
	})
	rec := NewRecordingInvoker(inner)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := rec.Invoke(context.Background(), testProfile(), InvokeOptions{})
			assert.NoError(t, err)
			assert.NotNil(t, res)
		}()
	}
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRecordingInvoker_FailuresNotRecorded(t *testing.T) {
	var calls atomic.Int32
	rec := NewRecordingInvoker(countingInvoker(&calls, errors.New("timeout")))

	_, err := rec.Invoke(context.Background(), testProfile(), InvokeOptions{})
	require.Error(t, err)
	_, err = rec.Invoke(context.Background(), testProfile(), InvokeOptions{})
	require.Error(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, rec.Len())
}
