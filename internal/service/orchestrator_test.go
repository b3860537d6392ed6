package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"intakedoc/internal/domain"
	"intakedoc/internal/ocr"
	"intakedoc/internal/port"
	"intakedoc/mocks"
)

func writeBatch(t *testing.T, contents ...string) []*domain.DocumentInstance {
	t.Helper()
	dir := t.TempDir()
	instances := make([]*domain.DocumentInstance, 0, len(contents))
	for i, content := range contents {
		path := filepath.Join(dir, "doc"+string(rune('a'+i))+".pdf")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		inst, err := NewFileService().Discover(path)
		require.NoError(t, err)
		instances = append(instances, inst)
	}
	return instances
}

func TestOrchestratorRun_Counts(t *testing.T) {
	instances := writeBatch(t, "content-one", "content-two", "content-three")

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).Return(testElements, nil)

	writer := new(mocks.MockOutputWriter)
	writer.On("Write", mock.Anything, mock.Anything, mock.Anything).Return("/out/x.md", nil)

	p := newTestPipeline(client, newTestRegistry(t), writer, PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 2).Run(context.Background(), instances)

	assert.Equal(t, 3, rep.Written)
	assert.Equal(t, 0, rep.Skipped)
	assert.Equal(t, 0, rep.Failed)
	assert.True(t, rep.OK())
	assert.Len(t, rep.Results, 3)
	assert.False(t, rep.Finished.Before(rep.Started))
}

func TestOrchestratorRun_DuplicateContentSkipped(t *testing.T) {
	// Two files with identical bytes share a checksum: the content is
	// processed once and the second instance is satisfied from cache.
	instances := writeBatch(t, "same-bytes", "same-bytes")

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).Return(testElements, nil).Once()

	writer := new(mocks.MockOutputWriter)
	writer.On("Write", mock.Anything, mock.Anything, mock.Anything).Return("/out/x.md", nil)

	p := newTestPipeline(client, newTestRegistry(t), writer, PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 2).Run(context.Background(), instances)

	assert.Equal(t, 1, rep.Written)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 0, rep.Failed)
	// Both instances still got their own output file.
	writer.AssertNumberOfCalls(t, "Write", 2)
	client.AssertExpectations(t)
}

func TestOrchestratorRun_FailureDoesNotStopBatch(t *testing.T) {
	instances := writeBatch(t, "good-one", "bad-one", "good-two")

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return string(in.Bytes) == "bad-one"
	})).Return(nil, &ocr.MalformedResponseError{Err: errors.New("garbage payload")})
	client.On("Extract", mock.Anything, mock.Anything).Return(testElements, nil)

	writer := new(mocks.MockOutputWriter)
	writer.On("Write", mock.Anything, mock.Anything, mock.Anything).Return("/out/x.md", nil)

	p := newTestPipeline(client, newTestRegistry(t), writer, PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 1).Run(context.Background(), instances)

	assert.Equal(t, 2, rep.Written)
	assert.Equal(t, 1, rep.Failed)
	assert.False(t, rep.OK())
	assert.Nil(t, rep.Fatal)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, instances[1].Path, rep.Failures[0].Path)
	assert.Equal(t, domain.StageAwaitingResult, rep.Failures[0].Stage)
}

func TestOrchestratorRun_AuthErrorAbortsBatch(t *testing.T) {
	instances := writeBatch(t, "one", "two", "three", "four")

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).
		Return(nil, &ocr.AuthError{Err: errors.New("invalid api key")})

	p := newTestPipeline(client, newTestRegistry(t), new(mocks.MockOutputWriter), PipelineConfig{MaxAttempts: 3})
	rep := NewOrchestrator(p, 1).Run(context.Background(), instances)

	require.Error(t, rep.Fatal)
	assert.True(t, ocr.IsFatal(rep.Fatal))
	assert.False(t, rep.OK())
	assert.Equal(t, 0, rep.Written)
	assert.GreaterOrEqual(t, rep.Failed, 1)
}

func TestOrchestratorRun_CancellationStopsNewWork(t *testing.T) {
	instances := writeBatch(t, "one", "two", "three", "four")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first pipeline cancels the run mid-extract: it still finishes,
	// but nothing not yet dispatched may start another extract.
	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(testElements, nil)

	writer := new(mocks.MockOutputWriter)
	writer.On("Write", mock.Anything, mock.Anything, mock.Anything).Return("/out/x.md", nil)

	p := newTestPipeline(client, newTestRegistry(t), writer, PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 1).Run(ctx, instances)

	assert.Equal(t, 1, rep.Written)
	assert.Equal(t, 3, rep.Failed)
	assert.False(t, rep.OK())
	assert.Len(t, rep.Results, 4)
	assert.Len(t, rep.Failures, 3)
	for _, f := range rep.Failures {
		assert.Equal(t, domain.StagePending, f.Stage)
	}
	client.AssertNumberOfCalls(t, "Extract", 1)
}

func TestOrchestratorRun_AbortedInstancesAppearInResults(t *testing.T) {
	instances := writeBatch(t, "one", "two", "three")

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).
		Return(nil, &ocr.AuthError{Err: errors.New("invalid api key")})

	p := newTestPipeline(client, newTestRegistry(t), new(mocks.MockOutputWriter), PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 1).Run(context.Background(), instances)

	require.Error(t, rep.Fatal)
	// Every instance gets a result row, dispatched or aborted, so the CSV
	// report accounts for the whole batch.
	assert.Len(t, rep.Results, len(instances))
	assert.Equal(t, len(instances), rep.Failed)
}

func TestOrchestratorRun_RespectsConcurrencyCap(t *testing.T) {
	instances := writeBatch(t, "a", "b", "c", "d", "e", "f")

	var active, peak atomic.Int32
	var mu sync.Mutex

	client := new(mocks.MockOCRClient)
	client.On("Extract", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			cur := active.Add(1)
			mu.Lock()
			if cur > peak.Load() {
				peak.Store(cur)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			active.Add(-1)
		}).
		Return(testElements, nil)

	writer := new(mocks.MockOutputWriter)
	writer.On("Write", mock.Anything, mock.Anything, mock.Anything).Return("/out/x.md", nil)

	p := newTestPipeline(client, newTestRegistry(t), writer, PipelineConfig{MaxAttempts: 1})
	rep := NewOrchestrator(p, 2).Run(context.Background(), instances)

	assert.True(t, rep.OK())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestReportOK(t *testing.T) {
	rep := &Report{}
	assert.True(t, rep.OK())

	rep.Failed = 1
	assert.False(t, rep.OK())

	rep = &Report{Fatal: errors.New("auth")}
	assert.False(t, rep.OK())
}
