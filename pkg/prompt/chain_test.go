package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func stepTemplate(id string) *Template {
	return NewTemplate(id, "Launch", TriggerExecute,
		NewTemplatedPart("step", Text(id+" after [{{previousOutput}}] seen {{#each chainResults}}<{{this}}>{{/each}}"), nil))
}

func TestChainExecute(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), stepTemplate("two"), stepTemplate("three"))
	require.Equal(t, 3, ch.Len())

	var steps []int
	var prompts []string
	exec := func(_ context.Context, prompt string, step int) (string, error) {
		steps = append(steps, step)
		prompts = append(prompts, prompt)
		return fmt.Sprintf("r%d", step), nil
	}

	initial := Context{Stage: "Launch"}
	results, err := ch.Execute(context.Background(), initial, exec)
	require.NoError(t, err)

	assert.Equal(t, []string{"r0", "r1", "r2"}, results)
	assert.Equal(t, []int{0, 1, 2}, steps)
	assert.Equal(t, []string{
		"one after [] seen",
		"two after [r0] seen <r0>",
		"three after [r1] seen <r0><r1>",
	}, prompts)

	assert.Empty(t, initial.ChainResults, "initial context must not be modified")
}

func TestChainExecuteAbortsOnError(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), stepTemplate("two"), stepTemplate("three"))
	boom := errors.New("rate limited")

	var calls int32
	exec := func(_ context.Context, _ string, step int) (string, error) {
		atomic.AddInt32(&calls, 1)
		if step == 1 {
			return "", boom
		}
		return "ok", nil
	}

	results, err := ch.Execute(context.Background(), Context{}, exec)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chain plan step 1")
	assert.Nil(t, results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "steps after a failure must not run")
}

func TestChainExecuteRenderError(t *testing.T) {
	boom := errors.New("bad data")
	broken := NewTemplate("broken", "Launch", TriggerExecute,
		NewDynamicPart("bad", func(Context, string) (string, error) { return "", boom }))
	ch := NewChain("plan", stepTemplate("one"), broken)

	results, err := ch.Execute(context.Background(), Context{}, func(context.Context, string, int) (string, error) {
		return "ok", nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, results)
}

func TestChainExecuteHonorsContext(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), stepTemplate("two"))
	ctx, cancel := context.WithCancel(context.Background())

	exec := func(ctx context.Context, _ string, step int) (string, error) {
		if step == 0 {
			cancel()
			return "first", nil
		}
		return "", ctx.Err()
	}

	results, err := ch.Execute(ctx, Context{}, exec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestChainExecuteEmpty(t *testing.T) {
	results, err := NewChain("empty").Execute(context.Background(), Context{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChainPreview(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), stepTemplate("two"), stepTemplate("three"))

	previews, err := ch.Preview(Context{})
	require.NoError(t, err)
	require.Len(t, previews, ch.Len())

	assert.Equal(t, "one after [] seen", previews[0])
	assert.Equal(t, "two after ["+DefaultPlaceholder+"] seen <"+DefaultPlaceholder+">", previews[1])
	assert.Contains(t, previews[2], "three after ["+DefaultPlaceholder+"]")

	again, err := ch.Preview(Context{})
	require.NoError(t, err)
	assert.Equal(t, previews, again)
}

func TestChainPreviewCustomPlaceholder(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), stepTemplate("two"))
	ch.Placeholder = "<pending>"

	previews, err := ch.Preview(Context{})
	require.NoError(t, err)
	assert.Equal(t, "two after [<pending>] seen <<pending>>", previews[1])

	ch.Placeholder = ""
	previews, err = ch.Preview(Context{})
	require.NoError(t, err)
	assert.Contains(t, previews[1], DefaultPlaceholder)
}

func TestChainRejectsMissingSteps(t *testing.T) {
	ch := NewChain("plan", stepTemplate("one"), nil, stepTemplate("three"))

	_, err := ch.Preview(Context{})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	assert.ErrorContains(t, err, "chain plan step 1")

	var steps []int
	_, err = ch.Execute(context.Background(), Context{}, func(_ context.Context, _ string, step int) (string, error) {
		steps = append(steps, step)
		return "ok", nil
	})
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	assert.Equal(t, []int{0}, steps)
}
