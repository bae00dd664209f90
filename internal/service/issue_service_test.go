package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/events"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

func newIssueFixture() (*IssueService, *[]events.EventType) {
	users := newMemUserRepo(
		testUser("plumber", domain.RolePlumber),
		testUser("plumber2", domain.RolePlumber),
		testUser("it", domain.RoleITStaff),
		testUser("admin", domain.RoleAdmin),
	)
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.EventType
	for _, et := range []events.EventType{events.EventIssueReported, events.EventIssueStatusChanged, events.EventIssueAssigned} {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			seen = append(seen, e.Type)
			return nil
		})
	}
	svc := NewIssueService(IssueDependencies{
		IssueRepo:  newMemIssueRepo(),
		UserRepo:   users,
		Dispatcher: dispatcher,
		Clock:      fixedClock,
	})
	return svc, &seen
}

func reportWater(t *testing.T, svc *IssueService, reporter string) *domain.Issue {
	t.Helper()
	location := "Block C, 2nd floor"
	issue, err := svc.Report(context.Background(), Actor{ID: reporter, Role: domain.RoleStudent}, domain.IssueCategoryWater, IssueCreateInput{
		Title:       "Leaking tap",
		Description: "The tap in the washroom has been leaking all night",
		Location:    &location,
	})
	require.NoError(t, err)
	return issue
}

func TestStudentListingNeverShowsOtherStudentsIssues(t *testing.T) {
	svc, _ := newIssueFixture()
	ctx := context.Background()
	reportWater(t, svc, "alice")
	reportWater(t, svc, "alice")
	reportWater(t, svc, "bob")

	alice, err := svc.List(ctx, Actor{ID: "alice", Role: domain.RoleStudent}, domain.IssueCategoryWater, IssueListFilter{})
	require.NoError(t, err)
	require.Len(t, alice, 2)
	for _, issue := range alice {
		assert.Equal(t, "alice", issue.ReporterID)
	}

	all, err := svc.List(ctx, Actor{ID: "admin", Role: domain.RoleAdmin}, domain.IssueCategoryWater, IssueListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	network, err := svc.List(ctx, Actor{ID: "it", Role: domain.RoleITStaff}, domain.IssueCategoryWater, IssueListFilter{})
	require.NoError(t, err)
	assert.Empty(t, network, "IT staff see only their own water reports")
}

func TestReportDefaultsAndValidation(t *testing.T) {
	svc, seen := newIssueFixture()
	issue := reportWater(t, svc, "alice")
	assert.Equal(t, domain.PriorityMedium, issue.Priority)
	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	assert.Equal(t, []events.EventType{events.EventIssueReported}, *seen)

	ctx := context.Background()
	student := Actor{ID: "alice", Role: domain.RoleStudent}
	_, err := svc.Report(ctx, student, domain.IssueCategoryWater, IssueCreateInput{Title: "Leaking tap", Description: "Water everywhere in here"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "water needs location")

	_, err = svc.Report(ctx, student, domain.IssueCategoryNetwork, IssueCreateInput{Title: "No wifi", Description: "Cannot connect since morning"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "network needs issue type")

	kind := domain.NetworkIssueConnectivity
	critical, err := svc.Report(ctx, student, domain.IssueCategoryNetwork, IssueCreateInput{
		Title: "No wifi", Description: "Cannot connect since morning", Priority: domain.PriorityCritical, IssueType: &kind,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, critical.Priority)

	location := "C"
	_, err = svc.Report(ctx, student, domain.IssueCategoryWater, IssueCreateInput{
		Title: "Leaking tap", Description: "Water everywhere in here", Priority: domain.PriorityCritical, Location: &location,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "water has no CRITICAL")
}

func TestWorkerPicksUpAndResolves(t *testing.T) {
	svc, seen := newIssueFixture()
	ctx := context.Background()
	issue := reportWater(t, svc, "alice")
	plumber := Actor{ID: "plumber", Role: domain.RolePlumber}

	queue, err := svc.List(ctx, plumber, domain.IssueCategoryWater, IssueListFilter{})
	require.NoError(t, err)
	assert.Len(t, queue, 1, "unassigned pending rows are visible")

	inProgress := domain.IssueStatusInProgress
	updated, err := svc.Update(ctx, plumber, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{Status: &inProgress})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "plumber", *updated.AssigneeID)

	other := Actor{ID: "plumber2", Role: domain.RolePlumber}
	resolved := domain.IssueStatusResolved
	_, err = svc.Update(ctx, other, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{Status: &resolved})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	otherQueue, err := svc.List(ctx, other, domain.IssueCategoryWater, IssueListFilter{})
	require.NoError(t, err)
	assert.Empty(t, otherQueue)

	done, err := svc.Update(ctx, plumber, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{Status: &resolved})
	require.NoError(t, err)
	assert.NotNil(t, done.ResolvedAt)

	pending := domain.IssueStatusPending
	_, err = svc.Update(ctx, plumber, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{Status: &pending})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	assert.Contains(t, *seen, events.EventIssueAssigned)
	assert.Contains(t, *seen, events.EventIssueStatusChanged)
}

func TestOnlyAdminAssignsAndAssigneeRoleIsChecked(t *testing.T) {
	svc, _ := newIssueFixture()
	ctx := context.Background()
	issue := reportWater(t, svc, "alice")
	admin := Actor{ID: "admin", Role: domain.RoleAdmin}

	target := "plumber2"
	_, err := svc.Update(ctx, Actor{ID: "plumber", Role: domain.RolePlumber}, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{AssigneeID: &target})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	it := "it"
	_, err = svc.Update(ctx, admin, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{AssigneeID: &it})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	updated, err := svc.Update(ctx, admin, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{AssigneeID: &target})
	require.NoError(t, err)
	assert.Equal(t, "plumber2", *updated.AssigneeID)
	assert.Equal(t, domain.IssueStatusPending, updated.Status)

	_, err = svc.Update(ctx, admin, domain.IssueCategoryWater, issue.ID, IssueUpdateInput{})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.Update(ctx, admin, domain.IssueCategoryNetwork, issue.ID, IssueUpdateInput{AssigneeID: &target})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"), "category mismatch")
}

func TestNetworkComments(t *testing.T) {
	svc, _ := newIssueFixture()
	ctx := context.Background()
	reporter := Actor{ID: "alice", Role: domain.RoleStudent}
	kind := domain.NetworkIssueSpeed
	issue, err := svc.Report(ctx, reporter, domain.IssueCategoryNetwork, IssueCreateInput{
		Title: "Slow wifi", Description: "Speed drops every evening", IssueType: &kind,
	})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, reporter, issue.ID, "hi")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.AddComment(ctx, reporter, issue.ID, "Still slow today")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, Actor{ID: "it", Role: domain.RoleITStaff}, issue.ID, "Looking into it")
	require.NoError(t, err)

	_, err = svc.ListComments(ctx, Actor{ID: "bob", Role: domain.RoleStudent}, issue.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	comments, err := svc.ListComments(ctx, reporter, issue.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}
