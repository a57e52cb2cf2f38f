package overlap

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audience-cli/internal/model"
	"github.com/sells-group/audience-cli/internal/snapshot"
)

func seedStore(t *testing.T, substack, crm []model.Record) snapshot.Store {
	t.Helper()
	s := snapshot.NewMemory(0)
	ctx := context.Background()
	if substack != nil {
		_, err := s.Save(ctx, model.SourceSubstack, substack)
		require.NoError(t, err)
	}
	if crm != nil {
		_, err := s.Save(ctx, model.SourceCRM, crm)
		require.NoError(t, err)
	}
	return s
}

func TestCompute_CaseInsensitiveMatchWithFallbacks(t *testing.T) {
	store := seedStore(t,
		[]model.Record{
			{"email": "a@x.com", "name": "A"},
			{"email": "b@x.com"},
		},
		[]model.Record{
			{"email": "A@X.COM", "company": "Acme"},
		},
	)

	report, err := New(store).Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.SubstackCount)
	assert.Equal(t, 1, report.CRMCount)
	assert.Equal(t, 1, report.OverlapCount)
	assert.Equal(t, 50, report.OverlapRate)
	require.Len(t, report.SampleOverlap, 1)
	assert.Equal(t, model.OverlapContact{
		Email:   "a@x.com",
		Name:    "A",
		Company: "Not provided",
	}, report.SampleOverlap[0])
}

func TestCompute_NoSnapshots(t *testing.T) {
	report, err := New(snapshot.NewMemory(0)).Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.SubstackCount)
	assert.Equal(t, 0, report.CRMCount)
	assert.Equal(t, 0, report.OverlapCount)
	assert.Equal(t, 0, report.OverlapRate)
	assert.NotNil(t, report.SampleOverlap)
	assert.Empty(t, report.SampleOverlap)
}

func TestCompute_EmptyAudienceRateIsZero(t *testing.T) {
	store := seedStore(t, nil, []model.Record{{"email": "a@x.com"}})

	report, err := New(store).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.OverlapRate)
}

func TestCompute_RateDenominatorIsAudienceSide(t *testing.T) {
	// Same intersection both ways, but the rate must use the substack
	// email set as denominator, so the direction matters.
	small := []model.Record{{"email": "a@x.com"}}
	big := []model.Record{
		{"email": "a@x.com"},
		{"email": "b@x.com"},
		{"email": "c@x.com"},
		{"email": "d@x.com"},
	}

	report, err := New(seedStore(t, small, big)).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, report.OverlapRate)

	report, err = New(seedStore(t, big, small)).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.OverlapCount)
	assert.Equal(t, 25, report.OverlapRate)
}

func TestCompute_MissingEmailsNeverMatch(t *testing.T) {
	store := seedStore(t,
		[]model.Record{
			{"name": "no email"},
			{"email": ""},
			{"email": "real@x.com"},
		},
		[]model.Record{
			{"name": "also no email"},
			{"email": ""},
		},
	)

	report, err := New(store).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.OverlapCount)
	assert.Empty(t, report.SampleOverlap)
}

func TestCompute_SampleCappedAtFive(t *testing.T) {
	var substack, crm []model.Record
	for i := 0; i < 12; i++ {
		email := fmt.Sprintf("user%d@x.com", i)
		substack = append(substack, model.Record{"email": email})
		crm = append(crm, model.Record{"email": email})
	}

	report, err := New(seedStore(t, substack, crm)).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, report.OverlapCount)
	assert.Len(t, report.SampleOverlap, SampleSize)
}

func TestCompute_SampleFollowsAudienceOrder(t *testing.T) {
	substack := []model.Record{
		{"email": "z@x.com"},
		{"email": "miss@x.com"},
		{"email": "a@x.com"},
	}
	crm := []model.Record{
		{"email": "a@x.com"},
		{"email": "z@x.com"},
	}

	report, err := New(seedStore(t, substack, crm)).Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, report.SampleOverlap, 2)
	assert.Equal(t, "z@x.com", report.SampleOverlap[0].Email)
	assert.Equal(t, "a@x.com", report.SampleOverlap[1].Email)
}

func TestCompute_CompanyBeatsWebsiteFallback(t *testing.T) {
	store := seedStore(t,
		[]model.Record{
			{"email": "a@x.com", "company": "Acme", "website": "https://acme.com"},
			{"email": "b@x.com", "website": "https://beta.io"},
			{"email": "c@x.com"},
		},
		[]model.Record{
			{"email": "a@x.com"},
			{"email": "b@x.com"},
			{"email": "c@x.com"},
		},
	)

	report, err := New(store).Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, report.SampleOverlap, 3)
	assert.Equal(t, "Acme", report.SampleOverlap[0].Company)
	assert.Equal(t, "https://beta.io", report.SampleOverlap[1].Company)
	assert.Equal(t, "Not provided", report.SampleOverlap[2].Company)

	assert.Equal(t, "Unknown", report.SampleOverlap[0].Name)
}

func TestCompute_DuplicateEmailsCountOnceInSets(t *testing.T) {
	store := seedStore(t,
		[]model.Record{
			{"email": "dup@x.com"},
			{"email": "DUP@x.com"},
			{"email": "other@x.com"},
		},
		[]model.Record{{"email": "dup@x.com"}},
	)

	report, err := New(store).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.SubstackCount)
	assert.Equal(t, 1, report.OverlapCount)
	// Two distinct audience emails, one matched.
	assert.Equal(t, 50, report.OverlapRate)
	// Both audience rows carrying the matched email appear in the sample.
	assert.Len(t, report.SampleOverlap, 2)
}
