package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/caravel/types"
)

type fakeSNS struct {
	published []string
	failAfter int // publishes before returning an error; -1 never fails
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.failAfter >= 0 && len(f.published) >= f.failAfter {
		return nil, errors.New("throttled")
	}
	f.published = append(f.published, aws.ToString(params.Message))
	return &sns.PublishOutput{}, nil
}

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		wants []int // group lengths
	}{
		{"exact multiple", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"single oversized group", 2, 5, []int{2}},
		{"unit groups", 3, 1, []int{1, 1, 1}},
		{"empty input", 0, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ids(tt.n)
			groups := Chunk(in, tt.size)

			require.Len(t, groups, len(tt.wants))
			rejoined := []string{}
			for i, g := range groups {
				assert.Len(t, g, tt.wants[i])
				rejoined = append(rejoined, g...)
			}
			// Order-preserving partition: concatenation restores the input.
			assert.Equal(t, in, rejoined)
		})
	}
}

func TestChunkInvalidSize(t *testing.T) {
	assert.Nil(t, Chunk(ids(3), 0))
	assert.Nil(t, Chunk(ids(3), -1))
}

func TestDispatchPublishesOneMessagePerGroup(t *testing.T) {
	client := &fakeSNS{failAfter: -1}
	d := New(client, "arn:topic", nil, func(time.Duration) {})

	require.NoError(t, d.Dispatch(context.Background(), ids(7), 3, 0))
	require.Len(t, client.published, 3)

	var unit types.WorkUnit
	require.NoError(t, json.Unmarshal([]byte(client.published[0]), &unit))
	assert.Equal(t, []string{"a", "b", "c"}, unit.SubscriptionIDs)

	require.NoError(t, json.Unmarshal([]byte(client.published[2]), &unit))
	assert.Equal(t, []string{"g"}, unit.SubscriptionIDs)
}

func TestDispatchDelaysBetweenPublishesOnly(t *testing.T) {
	client := &fakeSNS{failAfter: -1}
	var slept []time.Duration
	d := New(client, "arn:topic", nil, func(dur time.Duration) { slept = append(slept, dur) })

	require.NoError(t, d.Dispatch(context.Background(), ids(7), 3, 30*time.Second))

	// Three groups: a pause after the first and second publish, none after
	// the last.
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second}, slept)
}

func TestDispatchNoDelayConfigured(t *testing.T) {
	client := &fakeSNS{failAfter: -1}
	var slept []time.Duration
	d := New(client, "arn:topic", nil, func(dur time.Duration) { slept = append(slept, dur) })

	require.NoError(t, d.Dispatch(context.Background(), ids(7), 3, 0))
	assert.Empty(t, slept)
}

func TestDispatchPublishFailureIsFatal(t *testing.T) {
	client := &fakeSNS{failAfter: 1}
	d := New(client, "arn:topic", nil, func(time.Duration) {})

	err := d.Dispatch(context.Background(), ids(7), 3, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work unit 2 of 3")
	assert.Len(t, client.published, 1)
}

func TestDispatchEmptyInput(t *testing.T) {
	client := &fakeSNS{failAfter: -1}
	d := New(client, "arn:topic", nil, func(time.Duration) {})

	require.NoError(t, d.Dispatch(context.Background(), nil, 3, 0))
	assert.Empty(t, client.published)
}
