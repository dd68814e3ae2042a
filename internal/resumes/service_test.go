package resumes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-feedback/internal/feedback"
)

func newTestService() *Service {
	svc := NewService(NewMemoryRepo())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("rec-%d", n)
	}
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		Metadata: Metadata{
			JobTitle:       "  Platform Engineer ",
			CompanyName:    "Initech",
			JobDescription: "Own the deployment pipeline and on-call.",
		},
		DocumentURL: "https://files.example.com/cv.pdf",
	}
}

func TestServiceCreateTrimsAndStartsWithoutFeedback(t *testing.T) {
	svc := newTestService()

	rec, err := svc.Create(context.Background(), "u1", validInput())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "Platform Engineer", rec.JobTitle)
	assert.Nil(t, rec.Feedback)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestServiceCreateValidatesMetadata(t *testing.T) {
	svc := newTestService()

	in := validInput()
	in.JobDescription = "short"
	_, err := svc.Create(context.Background(), "u1", in)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, strings.Contains(err.Error(), "jobDescription"), err.Error())

	in = validInput()
	in.DocumentURL = " "
	_, err = svc.Create(context.Background(), "u1", in)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), "", validInput())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestServicePatchRequiresAField(t *testing.T) {
	svc := newTestService()
	rec, err := svc.Create(context.Background(), "u1", validInput())
	require.NoError(t, err)

	_, err = svc.Patch(context.Background(), "u1", rec.ID, Patch{})
	require.ErrorIs(t, err, ErrInvalidInput)

	report := feedback.Report{OverallScore: 81}
	updated, err := svc.Patch(context.Background(), "u1", rec.ID, Patch{Feedback: &report})
	require.NoError(t, err)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, 81, updated.Feedback.OverallScore)
}

func TestServiceDeleteAllReportsCount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "u1", validInput())
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "u2", validInput())
	require.NoError(t, err)

	n, err := svc.DeleteAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	left, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, left, 1)

	err = svc.Delete(ctx, "u1", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
