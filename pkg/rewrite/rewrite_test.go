package rewrite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rewriterc/pkg/prompt"
	"github.com/walteh/rewriterc/pkg/rewrite"
	"gitlab.com/tozd/go/errors"
)

// delimited wraps content in the reply format the extractor expects.
func delimited(content string) string {
	return "<REASONING>\nbecause\n</REASONING>\n\n<CHANGED_FILE_CONTENTS>\n" + content + "\n</CHANGED_FILE_CONTENTS>"
}

// fakeClient is a scripted completion client. Each call consumes the next
// scripted step; a step with a non-nil error simulates a transport failure.
type fakeClient struct {
	steps []fakeStep
	convs []prompt.Conversation
}

type fakeStep struct {
	reply string
	err   error
}

func (f *fakeClient) Complete(ctx context.Context, conv prompt.Conversation) (string, error) {
	f.convs = append(f.convs, conv)
	if len(f.steps) == 0 {
		return "", errors.New("fake client: no scripted reply left")
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.reply, step.err
}

func (f *fakeClient) calls() int {
	return len(f.convs)
}

// fakeValidator returns scripted verdicts in order, then keeps returning
// the last one.
type fakeValidator struct {
	verdicts []bool
	count    int
}

func (f *fakeValidator) Validate(ctx context.Context) (bool, error) {
	i := f.count
	f.count++
	if i >= len(f.verdicts) {
		i = len(f.verdicts) - 1
	}
	return f.verdicts[i], nil
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subject.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newRewriter(t *testing.T, opts rewrite.Options) *rewrite.Rewriter {
	t.Helper()
	if opts.Instruction == "" {
		opts.Instruction = `Replace all variable names that start with "old_" to start with "new_"`
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 5
	}
	r, err := rewrite.New(opts)
	require.NoError(t, err)
	return r
}

func TestNew_RequiredOptions(t *testing.T) {
	_, err := rewrite.New(rewrite.Options{Client: &fakeClient{}, MaxAttempts: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction")

	_, err = rewrite.New(rewrite.Options{Instruction: "x", MaxAttempts: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client")

	_, err = rewrite.New(rewrite.Options{Instruction: "x", Client: &fakeClient{}, MaxAttempts: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempts")
}

func TestProcessFile_NoValidator_SingleRoundTrip(t *testing.T) {
	path := writeTestFile(t, "old_value = 10")
	client := &fakeClient{steps: []fakeStep{
		{reply: delimited("new_value = 10")},
		{reply: delimited("should never be requested")},
	}}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 5})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateSucceeded, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, client.calls(), "no retries without a validator")
	assert.Equal(t, "new_value = 10", readFile(t, path))
}

func TestProcessFile_ValidatorAlwaysFails_RestoresOriginal(t *testing.T) {
	original := "old_value = 10\n"
	path := writeTestFile(t, original)
	client := &fakeClient{steps: []fakeStep{
		{reply: delimited("attempt one")},
		{reply: delimited("attempt two")},
	}}

	r := newRewriter(t, rewrite.Options{
		Client:      client,
		Validator:   &fakeValidator{verdicts: []bool{false}},
		MaxAttempts: 2,
	})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateExhaustedRestored, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, client.calls())
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, rewrite.ErrExhausted))
	assert.Equal(t, original, readFile(t, path), "original content restored byte-for-byte")
}

func TestProcessFile_ValidatorPassesOnSecondAttempt(t *testing.T) {
	path := writeTestFile(t, "old_value = 10")
	client := &fakeClient{steps: []fakeStep{
		{reply: delimited("first candidate")},
		{reply: delimited("second candidate")},
		{reply: delimited("never requested")},
	}}

	r := newRewriter(t, rewrite.Options{
		Client:      client,
		Validator:   &fakeValidator{verdicts: []bool{false, true}},
		MaxAttempts: 5,
	})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateSucceeded, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, client.calls(), "no attempt after the accepted one")
	assert.Equal(t, "second candidate", readFile(t, path))
}

func TestProcessFile_RejectedCandidateSeedsNextPrompt(t *testing.T) {
	path := writeTestFile(t, "old_value = 10")
	client := &fakeClient{steps: []fakeStep{
		{reply: delimited("rejected candidate")},
		{reply: delimited("accepted candidate")},
	}}

	r := newRewriter(t, rewrite.Options{
		Client:      client,
		Validator:   &fakeValidator{verdicts: []bool{false, true}},
		MaxAttempts: 3,
	})
	res := r.ProcessFile(testContext(t), path)
	require.Equal(t, rewrite.StateSucceeded, res.State)

	require.Len(t, client.convs, 2)
	first := client.convs[0][3].Content
	second := client.convs[1][3].Content
	assert.Contains(t, first, "old_value = 10")
	assert.Contains(t, second, "rejected candidate",
		"the second prompt embeds the rejected candidate, not the original")
	assert.NotContains(t, second, "old_value = 10")
}

func TestProcessFile_ExtractionFailureConsumesAttemptWithoutWriting(t *testing.T) {
	path := writeTestFile(t, "untouched")
	client := &fakeClient{steps: []fakeStep{
		{reply: "no markers in this reply"},
		{reply: delimited("fixed on retry")},
	}}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 3})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateSucceeded, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "fixed on retry", readFile(t, path))

	// The failed attempt did not change what the next prompt embeds.
	require.Len(t, client.convs, 2)
	assert.Contains(t, client.convs[1][3].Content, "untouched")
}

func TestProcessFile_TransportFailureConsumesAttempt(t *testing.T) {
	path := writeTestFile(t, "untouched")
	client := &fakeClient{steps: []fakeStep{
		{err: errors.New("connection reset")},
		{reply: delimited("recovered")},
	}}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 2})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateSucceeded, res.State)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, "recovered", readFile(t, path))
}

func TestProcessFile_AllExtractionsFail_FileUntouched(t *testing.T) {
	path := writeTestFile(t, "untouched")
	client := &fakeClient{steps: []fakeStep{
		{reply: "garbage"},
		{reply: "more garbage"},
	}}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 2})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateFailed, res.State)
	assert.Equal(t, 2, res.Attempts)
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, rewrite.ErrExhausted))
	assert.Equal(t, "untouched", readFile(t, path), "nothing was ever written")
}

func TestProcessFile_MissingFileIsFatal(t *testing.T) {
	client := &fakeClient{}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 3})
	res := r.ProcessFile(testContext(t), filepath.Join(t.TempDir(), "missing.txt"))

	assert.Equal(t, rewrite.StateFailed, res.State)
	require.Error(t, res.Err)
	assert.Equal(t, 0, client.calls(), "no completion requested for an unreadable file")
}

func TestProcessFile_RenameScenario(t *testing.T) {
	// Instruction from the README example: rename old_ variables, one
	// file, no validator.
	path := writeTestFile(t, "old_value = 10")
	client := &fakeClient{steps: []fakeStep{
		{reply: "<REASONING>\nold_value becomes new_value\n</REASONING>\n\n" +
			"<CHANGED_FILE_CONTENTS>\nnew_value = 10\n</CHANGED_FILE_CONTENTS>"},
	}}

	r := newRewriter(t, rewrite.Options{Client: client, MaxAttempts: 5})
	res := r.ProcessFile(testContext(t), path)

	assert.Equal(t, rewrite.StateSucceeded, res.State)
	assert.Equal(t, "new_value = 10", readFile(t, path))
	assert.Equal(t, 1, client.calls())
}
