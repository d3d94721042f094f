//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"lendgate/internal/audit"
	"lendgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "loan_audit_events"))
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 3; i++ {
		err := s.store.Append(ctx, audit.Event{
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Mode:        "DEFENSE",
			Stage:       "plausibility",
			Code:        "INCONSISTENT_DATA",
			ApplicantID: fmt.Sprintf("applicant-%d", i),
			Detail:      "inconsistent data",
			RequestID:   fmt.Sprintf("req-%d", i),
			Client:      "curl/8.0",
		})
		s.Require().NoError(err)
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("applicant-2", events[0].ApplicantID, "most recent first")
	s.Equal("applicant-1", events[1].ApplicantID)
	s.Equal("INCONSISTENT_DATA", events[0].Code)
	s.Equal("req-2", events[0].RequestID)
	s.NotEmpty(events[0].ID, "store assigns an ID when the event has none")
}

func (s *PostgresStoreSuite) TestListRecentDefaultsLimit() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: time.Now(), Mode: "DEFENSE", Stage: "vendor_failure",
		Code: "UC_TIMEOUT", ApplicantID: "alice", Detail: "vendor failure",
	}))

	events, err := s.store.ListRecent(ctx, 0)
	s.Require().NoError(err)
	s.Len(events, 1)
}

// TestConcurrentAppends verifies that parallel appends all land without
// losing or corrupting rows.
func (s *PostgresStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := s.store.Append(ctx, audit.Event{
				Timestamp:   time.Now(),
				Mode:        "DEFENSE",
				Stage:       "suspicious_low",
				Code:        "UC_SUSPICIOUS_LOW",
				ApplicantID: fmt.Sprintf("applicant-%d", n),
				Detail:      "suspicious low vendor score",
			})
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	events, err := s.store.ListRecent(ctx, writers+10)
	s.Require().NoError(err)
	s.Len(events, writers)
}
