package handler

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buyled/gomanage-relay/internal/gomanage"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/query"
	"github.com/buyled/gomanage-relay/internal/repository"
	"github.com/buyled/gomanage-relay/internal/service"
	"github.com/buyled/gomanage-relay/internal/session"
)

// stubUpstream implements service.Upstream with overridable behavior per
// test. Unset hooks fail loudly so a test only wires what it expects.
type stubUpstream struct {
	login   func(ctx context.Context, username, password string) (string, error)
	graphql func(ctx context.Context, token, document string, variables map[string]any) ([]byte, error)
	rest    func(ctx context.Context, token, path string) (*gomanage.RESTResult, error)
}

func (s *stubUpstream) Login(ctx context.Context, username, password string) (string, error) {
	if s.login == nil {
		return "", errors.New("unexpected Login call")
	}
	return s.login(ctx, username, password)
}

func (s *stubUpstream) ExecuteGraphQL(ctx context.Context, token, document string, variables map[string]any) ([]byte, error) {
	if s.graphql == nil {
		return nil, errors.New("unexpected ExecuteGraphQL call")
	}
	return s.graphql(ctx, token, document, variables)
}

func (s *stubUpstream) FetchREST(ctx context.Context, token, path string) (*gomanage.RESTResult, error) {
	if s.rest == nil {
		return nil, errors.New("unexpected FetchREST call")
	}
	return s.rest(ctx, token, path)
}

func (s *stubUpstream) NotifyLogout(ctx context.Context, token string) error { return nil }

func (s *stubUpstream) BaseURL() string { return "http://buyled.clonico.es:8181" }

type stubProber struct {
	online bool
}

func (s *stubProber) Probe(ctx context.Context) bool { return s.online }

type stubCustomerRepo struct {
	list  func(ctx context.Context, limit, offset int) ([]model.Customer, error)
	count func(ctx context.Context) (int, error)
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return nil, errors.New("unexpected FindByID call")
}

func (s *stubCustomerRepo) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	if s.list == nil {
		return nil, errors.New("unexpected List call")
	}
	return s.list(ctx, limit, offset)
}

func (s *stubCustomerRepo) Count(ctx context.Context) (int, error) {
	if s.count == nil {
		return 0, errors.New("unexpected Count call")
	}
	return s.count(ctx)
}

func (s *stubCustomerRepo) UpsertBatch(ctx context.Context, customers []model.Customer, syncedAt time.Time) error {
	return nil
}

func (s *stubCustomerRepo) WithTx(tx *sqlx.Tx) repository.CustomerRepository { return s }

type stubSyncRunRepo struct {
	runs []model.SyncRun
}

func (s *stubSyncRunRepo) FindByID(ctx context.Context, id string) (*model.SyncRun, error) {
	for i := range s.runs {
		if s.runs[i].ID == id {
			return &s.runs[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubSyncRunRepo) ListRecent(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	return s.runs, nil
}

func (s *stubSyncRunRepo) Create(ctx context.Context, params model.CreateSyncRunParams) (*model.SyncRun, error) {
	run := model.SyncRun{
		ID:        "run-1",
		Entity:    params.Entity,
		Status:    model.SyncRunStatusRunning,
		StartedAt: params.StartedAt,
	}
	s.runs = append(s.runs, run)
	return &run, nil
}

func (s *stubSyncRunRepo) Finish(ctx context.Context, params model.FinishSyncRunParams) error {
	for i := range s.runs {
		if s.runs[i].ID == params.ID {
			s.runs[i].Status = params.Status
			s.runs[i].RecordsProcessed = params.RecordsProcessed
			s.runs[i].RecordsSuccess = params.RecordsSuccess
			s.runs[i].RecordsError = params.RecordsError
			s.runs[i].ErrorMessage = params.ErrorMessage
			s.runs[i].FinishedAt = &params.FinishedAt
		}
	}
	return nil
}

func (s *stubSyncRunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubSyncRunRepo) WithTx(tx *sqlx.Tx) repository.SyncRunRepository { return s }

func newTestRelayService(upstream service.Upstream, prober service.HealthProber) (*service.RelayService, *session.Store) {
	store := session.NewStore(30*time.Minute, 30*time.Minute)
	translator := query.NewTranslator(query.CollectionPaths{
		Customers: "data.master_files.customers",
		Products:  "data.master_files.products",
		Orders:    "data.commercial_documents.orders",
	})
	relay := service.NewRelayService(store, upstream, translator, prober, service.Credentials{
		Username: "distri",
		Password: "GOtmt%",
	})
	return relay, store
}

const customersBody = `{"data":{"master_files":{"customers":{"totalCount":1,"nodes":[
	{"customer_id": 1, "name": "María García", "city": "Madrid"}
]}}}}`
