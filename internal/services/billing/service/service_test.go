package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"orgcore/internal/core/authz"
	"orgcore/internal/core/authz/authztest"
	"orgcore/internal/core/governance"
	"orgcore/internal/core/permissions"
	"orgcore/internal/platform/docstore"
	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/metrics"
	"orgcore/internal/platform/store"
	"orgcore/internal/platform/store/storetest"
	ptime "orgcore/internal/platform/time"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/billing/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feb1 = ptime.Date(2026, time.February, 1)
	feb6 = ptime.Date(2026, time.February, 6)
	mar1 = ptime.Date(2026, time.March, 1)
	apr1 = ptime.Date(2026, time.April, 1)
	jan1 = ptime.Date(2026, time.January, 1)
)

// flaky fails the next n saves with a conflict
type flaky struct {
	docstore.Store
	conflicts int
	saves     int
}

func (f *flaky) Save(ctx context.Context, prev docstore.Document, v json.RawMessage) (docstore.Document, error) {
	f.saves++
	if f.conflicts > 0 {
		f.conflicts--
		return prev, docstore.ErrConflict
	}
	return f.Store.Save(ctx, prev, v)
}

type recorder struct {
	entries []auditdomain.Entry
	// inTx counts appends made under an open tenant transaction
	inTx int
	fail error
}

func (r *recorder) Append(ctx context.Context, a *authz.Context, e auditdomain.Entry) (auditdomain.Event, error) {
	if store.Querier(ctx, nil) != nil {
		r.inTx++
	}
	if r.fail != nil {
		return auditdomain.Event{}, r.fail
	}
	r.entries = append(r.entries, e)
	return auditdomain.Event{OrgID: a.OrgID(), Action: e.Action}, nil
}

func seed(t *testing.T, st docstore.Store, plans []domain.BillingPlan, asgs []domain.Assignment) {
	t.Helper()
	ctx := context.Background()
	_, doc, err := docstore.LoadJSON[[]domain.BillingPlan](ctx, st, domain.PlansDocument)
	require.NoError(t, err)
	_, err = docstore.SaveJSON(ctx, st, doc, plans)
	require.NoError(t, err)
	_, doc, err = docstore.LoadJSON[[]domain.Assignment](ctx, st, domain.AssignmentsDocument)
	require.NoError(t, err)
	_, err = docstore.SaveJSON(ctx, st, doc, asgs)
	require.NoError(t, err)
}

func stored(t *testing.T, st docstore.Store) ([]domain.Assignment, docstore.Document) {
	t.Helper()
	list, doc, err := docstore.LoadJSON[[]domain.Assignment](context.Background(), st, domain.AssignmentsDocument)
	require.NoError(t, err)
	return list, doc
}

func plan(id string, status domain.PlanStatus) domain.BillingPlan {
	return domain.BillingPlan{
		ID: id, OrgID: "platform", StripePriceID: "price_" + id, Currency: "GBP", AmountCents: 4900,
		Cadence: domain.CadenceMonthly, Status: status, EffectiveFrom: jan1, Tag: authztest.UKOfficial,
	}
}

func assignment(id, tenant, planID string, from time.Time) domain.Assignment {
	return domain.Assignment{
		ID: id, Tenant: tenant, PlanID: planID, Status: domain.AssignmentPending, EffectiveFrom: from,
		Tag: authztest.UKOfficial, CreatedAt: jan1, UpdatedAt: jan1,
	}
}

func newSvc(st docstore.Store, opts ...Option) *Svc {
	clk := ptime.NewFixed(feb6.Add(9 * time.Hour))
	return New(st, append([]Option{WithClock(clk)}, opts...)...)
}

func TestResolveActivatesDueAssignment(t *testing.T) {
	st := docstore.NewMemory(nil)
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})
	before := testutil.ToFloat64(metrics.BillingTransitions.WithLabelValues("activated"))

	res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "price_p1", res.Plan.StripePriceID)
	assert.Equal(t, domain.AssignmentActive, res.Assignment.Status)

	list, _ := stored(t, st)
	assert.Equal(t, domain.AssignmentActive, list[0].Status)
	assert.True(t, list[0].UpdatedAt.Equal(feb6))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.BillingTransitions.WithLabelValues("activated")))
}

func TestResolveFutureAssignmentStaysPending(t *testing.T) {
	st := docstore.NewMemory(nil)
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", apr1)})

	res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	assert.Nil(t, res)

	list, _ := stored(t, st)
	assert.Equal(t, domain.AssignmentPending, list[0].Status)
}

func TestResolveSecondRunDoesNotWrite(t *testing.T) {
	mem := docstore.NewMemory(nil)
	seed(t, mem, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})
	st := &flaky{Store: mem}
	s := newSvc(st)
	a := authztest.New(t, "tenant-t")

	_, err := s.ResolveTenantBillingPlan(context.Background(), a, domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	_, doc := stored(t, mem)

	_, err = s.ResolveTenantBillingPlan(context.Background(), a, domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	_, doc2 := stored(t, mem)

	assert.Equal(t, 1, st.saves)
	assert.True(t, doc.UpdatedAt.Equal(doc2.UpdatedAt))
}

func TestResolveRetriesConflicts(t *testing.T) {
	mem := docstore.NewMemory(nil)
	seed(t, mem, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})
	st := &flaky{Store: mem, conflicts: 1}

	res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, st.saves)
	list, _ := stored(t, mem)
	assert.Equal(t, domain.AssignmentActive, list[0].Status)
}

func TestResolveAcceptsDerivationAfterRetryBound(t *testing.T) {
	mem := docstore.NewMemory(nil)
	seed(t, mem, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})
	st := &flaky{Store: mem, conflicts: 100}

	res, err := newSvc(st, WithMaxRetries(3)).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, domain.AssignmentActive, res.Assignment.Status)
	assert.Equal(t, 3, st.saves)
}

func TestResolveStorageOverride(t *testing.T) {
	def := docstore.NewMemory(nil)
	other := docstore.NewMemory(nil)
	seed(t, other, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})

	s := newSvc(def)
	a := authztest.New(t, "tenant-t")
	res, err := s.ResolveTenantBillingPlan(context.Background(), a, domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = s.ResolveTenantBillingPlan(context.Background(), a, domain.ResolveOptions{AsOf: &feb6, Storage: other})
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestResolveReturnsNilWithoutEntitlement(t *testing.T) {
	secret := governance.Tag{Residency: governance.ResidencyUKOnly, Classification: governance.ClassificationSecret}
	eea := governance.Tag{Residency: governance.ResidencyUKAndEEA, Classification: governance.ClassificationOfficial}
	expired := plan("p1", domain.PlanActive)
	expired.EffectiveTo = ptime.Ptr(feb1)
	labelled := plan("p1", domain.PlanActive)
	labelled.Tag = secret

	cases := map[string]struct {
		plan  domain.BillingPlan
		label governance.Tag
	}{
		"draft plan":                 {plan: plan("p1", domain.PlanDraft)},
		"archived plan":              {plan: plan("p1", domain.PlanArchived)},
		"plan window closed":         {plan: expired},
		"plan above clearance":       {plan: labelled},
		"assignment other region":    {plan: plan("p1", domain.PlanActive), label: eea},
		"assignment above clearance": {plan: plan("p1", domain.PlanActive), label: secret},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			st := docstore.NewMemory(nil)
			x := assignment("a1", "tenant-t", "p1", feb1)
			if tc.label != (governance.Tag{}) {
				x.Tag = tc.label
			}
			seed(t, st, []domain.BillingPlan{tc.plan}, []domain.Assignment{x})

			res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
			require.NoError(t, err)
			assert.Nil(t, res)

			list, _ := stored(t, st)
			assert.Equal(t, domain.AssignmentActive, list[0].Status, "the assignment still activates")
		})
	}
}

func TestResolveIsTenantScoped(t *testing.T) {
	st := docstore.NewMemory(nil)
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})

	res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-u"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	assert.Nil(t, res)
	list, _ := stored(t, st)
	assert.Equal(t, domain.AssignmentPending, list[0].Status)
}

func TestResolveRejectsTamperedContext(t *testing.T) {
	_, err := newSvc(docstore.NewMemory(nil)).ResolveTenantBillingPlan(context.Background(), nil, domain.ResolveOptions{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))
}

func TestAdminLifecycle(t *testing.T) {
	st := docstore.NewMemory(nil)
	rec := &recorder{}
	s := newSvc(st, WithAudit(rec))
	ctx := context.Background()
	admin := authztest.New(t, "platform")

	p, err := s.CreatePlan(ctx, admin, domain.CreatePlanInput{
		StripePriceID: "price_basic", Currency: "gbp", AmountCents: 1200, Cadence: domain.CadenceMonthly,
		Status: domain.PlanActive, EffectiveFrom: jan1,
	})
	require.NoError(t, err)
	assert.Equal(t, "GBP", p.Currency)
	assert.Equal(t, "platform", p.OrgID)
	assert.Equal(t, authztest.UKOfficial, p.Tag)

	_, err = s.CreatePlan(ctx, admin, domain.CreatePlanInput{StripePriceID: "price_basic", Currency: "GBP", Cadence: domain.CadenceAnnual, EffectiveFrom: jan1})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDuplicateKey))

	x, err := s.AssignPlan(ctx, admin, domain.AssignPlanInput{TenantID: "tenant-t", PlanID: p.ID, EffectiveFrom: feb1})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentPending, x.Status)

	res, err := s.ResolveTenantBillingPlan(ctx, authztest.New(t, "tenant-t"), domain.ResolveOptions{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, x.ID, res.Assignment.ID)

	list, err := s.ListAssignments(ctx, admin, domain.AssignmentFilter{TenantID: "tenant-t"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.AssignmentActive, list[0].Status)

	ended, err := s.EndAssignment(ctx, admin, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentRetired, ended.Status)
	require.NotNil(t, ended.EffectiveTo)

	again, err := s.EndAssignment(ctx, admin, x.ID)
	require.NoError(t, err)
	assert.Equal(t, ended, again)

	res, err = s.ResolveTenantBillingPlan(ctx, authztest.New(t, "tenant-t"), domain.ResolveOptions{})
	require.NoError(t, err)
	assert.Nil(t, res)

	actions := make([]string, 0, len(rec.entries))
	for _, e := range rec.entries {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{"billing.plan.create", "billing.assignment.create", "billing.assignment.end"}, actions)
}

func TestUpdatePlanDoesNotMutateAssignments(t *testing.T) {
	st := docstore.NewMemory(nil)
	s := newSvc(st)
	ctx := context.Background()
	admin := authztest.New(t, "platform")
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})

	_, err := s.ResolveTenantBillingPlan(ctx, authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	_, before := stored(t, st)

	archived := domain.PlanArchived
	_, err = s.UpdatePlan(ctx, admin, "p1", domain.UpdatePlanInput{Status: &archived})
	require.NoError(t, err)

	res, err := s.ResolveTenantBillingPlan(ctx, authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	assert.Nil(t, res)
	list, after := stored(t, st)
	assert.Equal(t, domain.AssignmentActive, list[0].Status)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))

	active := domain.PlanActive
	_, err = s.UpdatePlan(ctx, admin, "p1", domain.UpdatePlanInput{Status: &active})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestAdminGuards(t *testing.T) {
	st := docstore.NewMemory(nil)
	s := newSvc(st)
	ctx := context.Background()
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, nil)

	member := authztest.New(t, "platform", authztest.Role(permissions.RoleMember))
	_, err := s.CreatePlan(ctx, member, domain.CreatePlanInput{StripePriceID: "x", Currency: "GBP", Cadence: domain.CadenceMonthly, EffectiveFrom: jan1})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	foreign := authztest.New(t, "other-admin")
	_, err = s.AssignPlan(ctx, foreign, domain.AssignPlanInput{TenantID: "tenant-t", PlanID: "p1", EffectiveFrom: feb1})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "another org's plan is unknown to the caller")

	_, err = s.UpdatePlan(ctx, foreign, "p1", domain.UpdatePlanInput{})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	admin := authztest.New(t, "platform")
	_, err = s.AssignPlan(ctx, admin, domain.AssignPlanInput{TenantID: "tenant-t", PlanID: "p1", EffectiveFrom: feb6, EffectiveTo: &feb1})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))

	auditor := authztest.New(t, "tenant-t", authztest.Role(permissions.RoleAuditor))
	list, err := s.ListAssignments(ctx, auditor, domain.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolveBeforeActiveAssignmentDoesNotWrite(t *testing.T) {
	mem := docstore.NewMemory(nil)
	late := assignment("late", "tenant-t", "p2", mar1)
	late.Status = domain.AssignmentActive
	seed(t, mem, []domain.BillingPlan{plan("p1", domain.PlanActive), plan("p2", domain.PlanActive)},
		[]domain.Assignment{late, assignment("early", "tenant-t", "p1", feb1)})
	st := &flaky{Store: mem}

	res, err := newSvc(st).ResolveTenantBillingPlan(context.Background(), authztest.New(t, "tenant-t"), domain.ResolveOptions{AsOf: &feb6})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "early", res.Assignment.ID)
	assert.Equal(t, "price_p1", res.Plan.StripePriceID)
	assert.Zero(t, st.saves)

	list, _ := stored(t, mem)
	active := lo.Filter(list, func(x domain.Assignment, _ int) bool { return x.Status == domain.AssignmentActive })
	require.Len(t, active, 1)
	assert.Equal(t, "late", active[0].ID)
}

func TestAdminMissingAndForeignIdsAreDeniedAlike(t *testing.T) {
	st := docstore.NewMemory(nil)
	s := newSvc(st)
	ctx := context.Background()
	seed(t, st, []domain.BillingPlan{plan("p1", domain.PlanActive)}, []domain.Assignment{assignment("a1", "tenant-t", "p1", feb1)})
	foreign := authztest.New(t, "other-admin")

	for _, id := range []string{"p1", "nope"} {
		_, err := s.UpdatePlan(ctx, foreign, id, domain.UpdatePlanInput{})
		require.Error(t, err)
		assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden), "%s: %v", id, err)
		assert.Equal(t, "access denied", err.Error())
	}
	for _, id := range []string{"a1", "nope"} {
		_, err := s.EndAssignment(ctx, foreign, id)
		require.Error(t, err)
		assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden), "%s: %v", id, err)
		assert.Equal(t, "access denied", err.Error())
	}
}

func TestAdminWriteIsNotSavedWhenAuditFails(t *testing.T) {
	mem := docstore.NewMemory(nil)
	st := &flaky{Store: mem}
	rec := &recorder{fail: perr.New(perr.ErrorCodeUnavailable, "audit store down")}
	s := newSvc(st, WithAudit(rec))
	ctx := context.Background()
	admin := authztest.New(t, "platform")

	_, err := s.CreatePlan(ctx, admin, domain.CreatePlanInput{
		StripePriceID: "price_basic", Currency: "GBP", Cadence: domain.CadenceMonthly, EffectiveFrom: jan1,
	})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Zero(t, st.saves)

	plans, err := s.ListPlans(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestAdminWriteAndAuditShareTransaction(t *testing.T) {
	st := docstore.NewMemory(nil)
	rec := &recorder{}
	tx := &storetest.Tx{}
	s := newSvc(st, WithAudit(rec), WithTx(tx))
	admin := authztest.New(t, "platform")

	_, err := s.CreatePlan(context.Background(), admin, domain.CreatePlanInput{
		StripePriceID: "price_basic", Currency: "GBP", Cadence: domain.CadenceMonthly, EffectiveFrom: jan1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.inTx)
	assert.Equal(t, []string{"platform"}, tx.Tenants)

	tx.Fail = perr.New(perr.ErrorCodeUnavailable, "db down")
	_, err = s.CreatePlan(context.Background(), admin, domain.CreatePlanInput{
		StripePriceID: "price_pro", Currency: "GBP", Cadence: domain.CadenceMonthly, EffectiveFrom: jan1,
	})
	require.Error(t, err)
	plans, err := s.ListPlans(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
}
