package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, BackoffExponential, p.Mode)
	require.Equal(t, 10*time.Millisecond, p.Initial)
	require.Equal(t, 500*time.Millisecond, p.Max)
	require.Equal(t, 60, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(BackoffFixed, 5*time.Second, 2*time.Second, 5)
	require.Equal(t, 2*time.Second, p.Initial, "initial clamped to max")
	require.Equal(t, 2*time.Second, p.Max)
	require.Equal(t, BackoffFixed, p.Mode)
	require.Equal(t, 5, p.MaxRetries)

	p = NewPolicy("bogus", 0, 0, -1)
	require.Equal(t, DefaultPolicy(), p)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration
	}{
		{"fixed", NewPolicy(BackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(BackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(BackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				require.Equal(t, want, tt.policy.Delay(i+1), "attempt %d", i+1)
			}
		})
	}
}

func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(BackoffExponential, 10*time.Millisecond, time.Second, 100)
	require.Zero(t, p.Delay(0))
	require.Zero(t, p.Delay(-1))
	require.Equal(t, time.Second, p.Delay(90), "large attempts do not overflow")
}

func TestExhausted(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)
	require.False(t, p.Exhausted(2))
	require.True(t, p.Exhausted(3))
}

func TestWait(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 1)
	require.NoError(t, p.Wait(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewPolicy(BackoffFixed, time.Hour, time.Hour, 1)
	require.ErrorIs(t, slow.Wait(ctx, 1), context.Canceled)
}

func TestValidate(t *testing.T) {
	require.Error(t, Policy{Mode: BackoffLinear, Max: time.Second, MaxRetries: 1}.Validate())
	require.Error(t, Policy{Mode: BackoffLinear, Initial: time.Second, MaxRetries: 1}.Validate())
	require.Error(t, Policy{Mode: BackoffLinear, Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}
