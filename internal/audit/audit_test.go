package audit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventText(t *testing.T) {
	e := Event{
		Mode:        "DEFENSE",
		Stage:       "suspicious_low",
		Code:        "UC_SUSPICIOUS_LOW",
		ApplicantID: "attacker",
		Detail:      "suspicious low vendor score",
		RequestID:   "req-1",
		Client:      "Firefox/140.0 (Linux)",
	}

	text := e.Text()
	assert.True(t, strings.HasPrefix(text, "UC_SUSPICIOUS_LOW "), "code leads the line: %q", text)
	assert.Contains(t, text, `applicant_id="attacker"`)
	assert.Contains(t, text, "request_id=req-1")
	assert.NotContains(t, text, "\n", "events are single-line records")

	// Optional fields stay out of the line entirely when unset.
	bare := Event{Code: "UC_TIMEOUT", Mode: "DEFENSE", Stage: "vendor_failure", Detail: "vendor failure"}
	assert.NotContains(t, bare.Text(), "request_id")
	assert.NotContains(t, bare.Text(), "client")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.log")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	pub := NewPublisher(sink)
	require.NoError(t, pub.Emit(context.Background(), Event{
		Code:        "UC_TIMEOUT",
		Mode:        "DEFENSE",
		Stage:       "vendor_failure",
		ApplicantID: "alice",
		Detail:      "vendor failure: timeout",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSuffix(string(data), "\n")
	require.NotContains(t, line, "\n", "one event, one line")
	assert.Regexp(t, regexp.MustCompile(`^\d+ UC_TIMEOUT `), line, "line starts with a unix timestamp")
}

// TestFileSinkConcurrentAppends verifies that parallel writers never
// interleave partial records.
func TestFileSinkConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.log")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := sink.Append(context.Background(), Event{
				Timestamp:   time.Now(),
				Code:        "INCONSISTENT_DATA",
				Mode:        "DEFENSE",
				Stage:       "plausibility",
				ApplicantID: fmt.Sprintf("applicant-%d", n),
				Detail:      "inconsistent data",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lineFormat := regexp.MustCompile(`^\d+ INCONSISTENT_DATA mode=DEFENSE stage=plausibility applicant_id="applicant-\d+" inconsistent data$`)
	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		require.Regexp(t, lineFormat, scanner.Text())
		count++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, writers, count)
}

type failingSink struct{}

func (failingSink) Append(context.Context, Event) error {
	return errors.New("sink down")
}

func TestMultiSink(t *testing.T) {
	t.Run("fans out to all sinks", func(t *testing.T) {
		a := NewInMemorySink()
		b := NewInMemorySink()
		multi := NewMultiSink(a, nil, b)

		require.NoError(t, multi.Append(context.Background(), Event{Code: "UC_MALFORMED"}))
		assert.Len(t, a.Events(), 1)
		assert.Len(t, b.Events(), 1)
	})

	t.Run("surfaces sink failure after all appends", func(t *testing.T) {
		a := NewInMemorySink()
		multi := NewMultiSink(a, failingSink{})

		err := multi.Append(context.Background(), Event{Code: "UC_TIMEOUT"})
		assert.Error(t, err)
		assert.Len(t, a.Events(), 1, "healthy sinks still receive the event")
	})
}

func TestPublisherStampsTimestamp(t *testing.T) {
	sink := NewInMemorySink()
	pub := NewPublisher(sink)

	require.NoError(t, pub.Emit(context.Background(), Event{Code: "OK"}))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero())
}
