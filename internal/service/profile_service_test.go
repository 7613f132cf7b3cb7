package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rscasurvey/internal/model"
	"rscasurvey/internal/repository"
)

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*model.BackgroundProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.BackgroundProfile)
	return p, args.Error(1)
}

func (m *mockProfileRepo) FindByHash(ctx context.Context, hash string) (*model.BackgroundProfile, error) {
	args := m.Called(ctx, hash)
	p, _ := args.Get(0).(*model.BackgroundProfile)
	return p, args.Error(1)
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *model.BackgroundProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *mockProfileRepo) RecordTiming(ctx context.Context, id string, questionID int, timeSpent int64) error {
	return m.Called(ctx, id, questionID, timeSpent).Error(0)
}

func (m *mockProfileRepo) AddRecording(ctx context.Context, id string, ref model.RecordingRef) error {
	return m.Called(ctx, id, ref).Error(0)
}

func (m *mockProfileRepo) List(ctx context.Context) ([]*model.BackgroundProfile, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]*model.BackgroundProfile)
	return p, args.Error(1)
}

func (m *mockProfileRepo) RemoveRecordings(ctx context.Context, id, sessionID string) error {
	return m.Called(ctx, id, sessionID).Error(0)
}

func (m *mockProfileRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestHashDemographicsIgnoresEthnicityOrder(t *testing.T) {
	a := model.Demographics{Age: intPtr(20), Ethnicity: []string{"Asian", "White"}, Gender: "Woman"}
	b := model.Demographics{Age: intPtr(20), Ethnicity: []string{"White", "Asian"}, Gender: "Woman"}

	ha, err := HashDemographics(a)
	require.NoError(t, err)
	hb, err := HashDemographics(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	c := b
	c.Gender = "Man"
	hc, err := HashDemographics(c)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestApplyFieldCoercesValues(t *testing.T) {
	var d model.Demographics

	require.NoError(t, ApplyField(&d, model.FieldAge, "21"))
	require.NoError(t, ApplyField(&d, model.FieldEthnicity, []interface{}{"White", "Asian", "White"}))
	require.NoError(t, ApplyField(&d, model.FieldGender, " Woman "))
	require.NoError(t, ApplyField(&d, model.FieldFirstGenStudent, "Yes"))
	require.NoError(t, ApplyField(&d, model.FieldCSStudent, false))
	require.NoError(t, ApplyField(&d, model.FieldMajor, "Biology"))

	assert.Equal(t, 21, *d.Age)
	assert.Equal(t, []string{"Asian", "White"}, d.Ethnicity)
	assert.Equal(t, "Woman", d.Gender)
	assert.True(t, *d.FirstGenStudent)
	assert.False(t, *d.CSStudent)
	assert.Equal(t, "Biology", d.Major)

	assert.ErrorIs(t, ApplyField(&d, model.FieldAge, "old"), ErrInvalidAnswer)
	assert.ErrorIs(t, ApplyField(&d, model.FieldAge, -3), ErrInvalidAnswer)
	assert.ErrorIs(t, ApplyField(&d, model.FieldCSStudent, "maybe"), ErrInvalidAnswer)
}

func TestResolveRecoversFromDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	d := model.Demographics{Age: intPtr(30)}
	hash, err := HashDemographics(d)
	require.NoError(t, err)

	existing := &model.BackgroundProfile{ID: "p-1", ProfileHash: hash, Demographics: d}
	repo := new(mockProfileRepo)
	repo.On("FindByHash", ctx, hash).Return(nil, nil).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*model.BackgroundProfile")).Return(repository.ErrDuplicateProfile).Once()
	repo.On("FindByHash", ctx, hash).Return(existing, nil).Once()

	svc := NewProfileService(repo, nil)
	got, err := svc.Resolve(ctx, d, nil)
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)
	repo.AssertExpectations(t)
}

func TestResolveCarriesOverOnlyTheMovingSession(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStore().Profiles()
	svc := NewProfileService(repo, nil)

	first, err := svc.Resolve(ctx, model.Demographics{Age: intPtr(19)}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.RecordTiming(ctx, first.ID, 38, 4000))
	require.NoError(t, svc.AddRecording(ctx, first.ID, model.RecordingRef{SessionID: "s-1", QuestionID: 38, RecordingID: "r-1"}))
	require.NoError(t, svc.AddRecording(ctx, first.ID, model.RecordingRef{SessionID: "s-2", QuestionID: 38, RecordingID: "r-2"}))
	first, err = svc.Get(ctx, first.ID)
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, model.Demographics{Age: intPtr(19), Gender: "Man"}, &Move{From: first, SessionID: "s-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4000, got.TimeSpentOnQuestions["38"])
	assert.Equal(t, []model.RecordingRef{{SessionID: "s-1", QuestionID: 38, RecordingID: "r-1"}}, got.EEGRecordings)
}

func TestResolveLeavingSharedProfileDetachesRecordings(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStore().Profiles()
	svc := NewProfileService(repo, nil)

	shared, err := svc.Resolve(ctx, model.Demographics{Age: intPtr(20)}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.RecordTiming(ctx, shared.ID, 38, 2500))
	require.NoError(t, svc.AddRecording(ctx, shared.ID, model.RecordingRef{SessionID: "a", QuestionID: 38, RecordingID: "rec-a"}))
	require.NoError(t, svc.AddRecording(ctx, shared.ID, model.RecordingRef{SessionID: "b", QuestionID: 38, RecordingID: "rec-b"}))
	shared, err = svc.Get(ctx, shared.ID)
	require.NoError(t, err)

	moved, err := svc.Resolve(ctx, model.Demographics{Age: intPtr(20), Gender: "Woman"}, &Move{From: shared, SessionID: "a", Shared: true})
	require.NoError(t, err)

	got, err := svc.Get(ctx, moved.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.RecordingRef{{SessionID: "a", QuestionID: 38, RecordingID: "rec-a"}}, got.EEGRecordings)
	assert.NotContains(t, got.TimeSpentOnQuestions, "38")

	left, err := svc.Get(ctx, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.RecordingRef{{SessionID: "b", QuestionID: 38, RecordingID: "rec-b"}}, left.EEGRecordings)
	assert.EqualValues(t, 2500, left.TimeSpentOnQuestions["38"])
}

func TestAggregate(t *testing.T) {
	stats := Aggregate([]*model.BackgroundProfile{
		{Demographics: model.Demographics{Age: intPtr(20), Gender: "Woman", Ethnicity: []string{"Asian", "White"}, CSStudent: boolPtr(true)}},
		{Demographics: model.Demographics{Age: intPtr(30), Gender: "Man", Major: "Math", FirstGenStudent: boolPtr(false)}},
		{Demographics: model.Demographics{Gender: "Woman"}},
	})

	assert.Equal(t, 3, stats.Count)
	assert.InDelta(t, 25.0, stats.AverageAge, 1e-9)
	assert.Equal(t, map[string]int{"Woman": 2, "Man": 1}, stats.GenderDistribution)
	assert.Equal(t, map[string]int{"Asian": 1, "White": 1}, stats.EthnicityDistribution)
	assert.Equal(t, map[string]int{"Math": 1}, stats.MajorDistribution)
	assert.Equal(t, map[string]int{"true": 1}, stats.CSStudentDistribution)
	assert.Equal(t, map[string]int{"false": 1}, stats.FirstGenDistribution)
	assert.Empty(t, stats.TransgenderDistribution)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.AverageAge)
}
