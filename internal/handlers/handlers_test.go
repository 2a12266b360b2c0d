package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/leads"
	"github.com/Werneck0live/cadastro-leads/internal/message"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/proposals"
	"github.com/Werneck0live/cadastro-leads/internal/store"
	"github.com/Werneck0live/cadastro-leads/internal/validation"
)

/*
RODAR TODOS OS TESTES:

go test -run 'TestLogin_|TestUsers_|TestCNPJ_|TestLeads_|TestProposals_|TestSettings_|TestAPI_' -v ./internal/handlers -count=1

*/

const validCNPJ = "11.222.333/0001-81"

func newAPI() *API {
	return &API{
		Auth:      &authMock{},
		Users:     &usersMock{},
		Intake:    &intakeMock{},
		Leads:     &leadsMock{},
		Proposals: &proposalsMock{},
	}
}

// serve passa pelo mux para que r.PathValue funcione como em produção.
func serve(a *API, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	a.Routes(mux)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid json: %v\nbody=%s", err, rr.Body.String())
	}
}

func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rr.Code != code {
		t.Fatalf("status = %d; want %d; body=%s", rr.Code, code, rr.Body.String())
	}
}

// 1) login - go test -run 'TestLogin_' -v ./internal/handlers -count=1

func TestLogin_OK_StripsPassword(t *testing.T) {
	a := newAPI()
	a.Auth = &authMock{LoginFn: func(_ context.Context, u, p string) (models.User, error) {
		if u != "admin" || p != "admin123" {
			t.Fatalf("credentials: got %q %q", u, p)
		}
		return models.User{ID: 1, Username: "admin", Password: "$2a$10$hash", Name: "Administrador", Role: models.RoleAdmin}, nil
	}}

	rr := serve(a, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin123"}`)
	wantStatus(t, rr, http.StatusOK)
	if strings.Contains(rr.Body.String(), "password") || strings.Contains(rr.Body.String(), "$2a$") {
		t.Fatalf("password leaked: %s", rr.Body.String())
	}
	var got struct {
		User UserResponse `json:"user"`
	}
	decodeBody(t, rr, &got)
	if got.User.ID != 1 || got.User.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %#v", got.User)
	}
}

func TestLogin_InvalidCredentials401(t *testing.T) {
	a := newAPI()
	a.Auth = &authMock{LoginFn: func(context.Context, string, string) (models.User, error) {
		return models.User{}, auth.ErrInvalidCredentials
	}}
	rr := serve(a, http.MethodPost, "/api/auth/login", `{"username":"x","password":"y"}`)
	wantStatus(t, rr, http.StatusUnauthorized)
}

func TestLogin_MissingFields400(t *testing.T) {
	rr := serve(newAPI(), http.MethodPost, "/api/auth/login", `{"username":""}`)
	wantStatus(t, rr, http.StatusBadRequest)
	var got struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, rr, &got)
	if got.Fields["username"] == "" || got.Fields["password"] == "" {
		t.Fatalf("fields: %#v", got.Fields)
	}
}

func TestLogin_UnknownField400(t *testing.T) {
	rr := serve(newAPI(), http.MethodPost, "/api/auth/login", `{"username":"a","password":"b","token":"x"}`)
	wantStatus(t, rr, http.StatusBadRequest)
}

// 2) users - go test -run 'TestUsers_' -v ./internal/handlers -count=1

func TestUsers_Create201(t *testing.T) {
	a := newAPI()
	a.Auth = &authMock{CreateUserFn: func(_ context.Context, in auth.CreateUserInput) (models.User, error) {
		if in.Role != "" {
			t.Fatalf("role should pass through empty, got %q", in.Role)
		}
		return models.User{ID: 2, Username: in.Username, Password: "hash", Name: in.Name, Role: models.RoleConsultant}, nil
	}}
	rr := serve(a, http.MethodPost, "/api/users", `{"username":"maria","password":"s3cret","name":"Maria"}`)
	wantStatus(t, rr, http.StatusCreated)
	if strings.Contains(rr.Body.String(), "hash") {
		t.Fatalf("password leaked: %s", rr.Body.String())
	}
}

func TestUsers_CreateDuplicate409(t *testing.T) {
	a := newAPI()
	a.Auth = &authMock{CreateUserFn: func(context.Context, auth.CreateUserInput) (models.User, error) {
		return models.User{}, fmt.Errorf("create user: %w", store.ErrDuplicate)
	}}
	rr := serve(a, http.MethodPost, "/api/users", `{"username":"maria","password":"s3cret","name":"Maria"}`)
	wantStatus(t, rr, http.StatusConflict)
}

func TestUsers_CreateInvalidRole400(t *testing.T) {
	rr := serve(newAPI(), http.MethodPost, "/api/users", `{"username":"maria","password":"s3cret","name":"Maria","role":"root"}`)
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestUsers_CreatePasswordTooLong400(t *testing.T) {
	long := strings.Repeat("x", 73)
	rr := serve(newAPI(), http.MethodPost, "/api/users", `{"username":"maria","password":"`+long+`","name":"Maria"}`)
	wantStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("body: %s", rr.Body.String())
	}
}

func TestUsers_ListConsultantsEmptyIsArray(t *testing.T) {
	rr := serve(newAPI(), http.MethodGet, "/api/users/consultants", "")
	wantStatus(t, rr, http.StatusOK)
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("body = %s; want []", rr.Body.String())
	}
}

func TestUsers_Delete(t *testing.T) {
	a := newAPI()
	a.Users = &usersMock{DeleteUserFn: func(_ context.Context, id int64) (models.User, error) {
		if id == 9 {
			return models.User{}, store.ErrNotFound
		}
		return models.User{ID: id}, nil
	}}
	wantStatus(t, serve(a, http.MethodDelete, "/api/users/3", ""), http.StatusOK)
	wantStatus(t, serve(a, http.MethodDelete, "/api/users/9", ""), http.StatusNotFound)
	wantStatus(t, serve(a, http.MethodDelete, "/api/users/abc", ""), http.StatusBadRequest)
}

// 3) cnpj - go test -run 'TestCNPJ_' -v ./internal/handlers -count=1

func TestCNPJ_LookupPassesPhone(t *testing.T) {
	a := newAPI()
	a.Intake = &intakeMock{LookupFn: func(_ context.Context, taxID, phone string) (models.Company, error) {
		if phone != "11999990000" {
			t.Fatalf("phone = %q", phone)
		}
		return models.Company{ID: 1, CNPJ: "11222333000181", Name: "ACME LTDA"}, nil
	}}
	rr := serve(a, http.MethodPost, "/api/cnpj-lookup", `{"cnpj":"`+validCNPJ+`","phone":"11999990000"}`)
	wantStatus(t, rr, http.StatusOK)
	var c models.Company
	decodeBody(t, rr, &c)
	if c.Name != "ACME LTDA" {
		t.Fatalf("company: %#v", c)
	}
}

func TestCNPJ_LookupInvalidCNPJ400(t *testing.T) {
	rr := serve(newAPI(), http.MethodPost, "/api/cnpj-lookup", `{"cnpj":"11.222.333/0001-00"}`)
	wantStatus(t, rr, http.StatusBadRequest)
}

func TestCNPJ_RegistryFailureIs404(t *testing.T) {
	a := newAPI()
	a.Intake = &intakeMock{ResolveFn: func(context.Context, string) (models.Company, error) {
		return models.Company{}, fmt.Errorf("cnpj 11222333000181: %w", store.ErrNotFound)
	}}
	rr := serve(a, http.MethodGet, "/api/cnpj/11222333000181", "")
	wantStatus(t, rr, http.StatusNotFound)
}

// 4) leads - go test -run 'TestLeads_' -v ./internal/handlers -count=1

func TestLeads_AssignAndStatus(t *testing.T) {
	a := newAPI()
	a.Leads = &leadsMock{
		AssignFn: func(_ context.Context, leadID, cid int64) (models.Lead, error) {
			return models.Lead{ID: leadID, ConsultantID: &cid, Status: models.LeadAssigned}, nil
		},
		SetStatusFn: func(_ context.Context, leadID int64, st models.LeadStatus) (models.Lead, error) {
			if st == models.LeadPending {
				return models.Lead{}, fmt.Errorf("lead %d: %w", leadID, leads.ErrInvalidTransition)
			}
			return models.Lead{ID: leadID, Status: st}, nil
		},
	}

	rr := serve(a, http.MethodPut, "/api/leads/5/assign", `{"consultantId":2}`)
	wantStatus(t, rr, http.StatusOK)
	var l models.Lead
	decodeBody(t, rr, &l)
	if l.ConsultantID == nil || *l.ConsultantID != 2 || l.Status != models.LeadAssigned {
		t.Fatalf("lead: %#v", l)
	}

	wantStatus(t, serve(a, http.MethodPut, "/api/leads/5/status", `{"status":"completed"}`), http.StatusOK)
	wantStatus(t, serve(a, http.MethodPut, "/api/leads/5/status", `{"status":"pending"}`), http.StatusConflict)
	wantStatus(t, serve(a, http.MethodPut, "/api/leads/5/assign", `{}`), http.StatusBadRequest)
	wantStatus(t, serve(a, http.MethodPut, "/api/leads/0/assign", `{"consultantId":2}`), http.StatusBadRequest)
}

func TestLeads_ListRoutes(t *testing.T) {
	a := newAPI()
	var gotConsultant int64
	a.Leads = &leadsMock{
		PendingFn: func(context.Context) []leads.View {
			return []leads.View{{Lead: models.Lead{ID: 1, Status: models.LeadPending}, IsNew: true}}
		},
		ByConsultantFn: func(_ context.Context, id int64) []leads.View {
			gotConsultant = id
			return []leads.View{}
		},
	}
	rr := serve(a, http.MethodGet, "/api/leads/pending", "")
	wantStatus(t, rr, http.StatusOK)
	var views []map[string]any
	decodeBody(t, rr, &views)
	if len(views) != 1 || views[0]["isNew"] != true {
		t.Fatalf("views: %#v", views)
	}
	wantStatus(t, serve(a, http.MethodGet, "/api/leads/consultant/7", ""), http.StatusOK)
	if gotConsultant != 7 {
		t.Fatalf("consultant = %d", gotConsultant)
	}
}

func TestLeads_RegisterValidation400(t *testing.T) {
	a := newAPI()
	a.Leads = &leadsMock{RegisterFn: func(context.Context, leads.RegisterInput) (models.Lead, error) {
		return models.Lead{}, validation.Field("companyName", "is required")
	}}
	wantStatus(t, serve(a, http.MethodPost, "/api/leads", `{"cnpj":"`+validCNPJ+`","companyName":"ACME"}`), http.StatusBadRequest)
}

// 5) proposals - go test -run 'TestProposals_' -v ./internal/handlers -count=1

func TestProposals_CreateMapsRates(t *testing.T) {
	a := newAPI()
	a.Proposals = &proposalsMock{CreateFromFormFn: func(_ context.Context, in proposals.Input) (models.Proposal, error) {
		if in.Rates.PixRate != "0.10" || in.Rates.DebitRate != "" {
			t.Fatalf("rates: %#v", in.Rates)
		}
		return models.Proposal{ID: 1, CNPJ: "11222333000181", Rates: models.Rates{PixRate: "0.10", DebitRate: "0.51"}}, nil
	}}
	body := `{"cnpj":"` + validCNPJ + `","companyName":"ACME","consultantId":2,"consultantName":"Maria","pixRate":"0.10"}`
	rr := serve(a, http.MethodPost, "/api/proposals", body)
	wantStatus(t, rr, http.StatusCreated)
}

func TestProposals_CreateBadRate400(t *testing.T) {
	body := `{"cnpj":"` + validCNPJ + `","companyName":"ACME","consultantId":2,"consultantName":"Maria","pixRate":"1,5"}`
	rr := serve(newAPI(), http.MethodPost, "/api/proposals", body)
	wantStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(rr.Body.String(), "pixRate") {
		t.Fatalf("body: %s", rr.Body.String())
	}
}

func TestProposals_SubresourceDispatch(t *testing.T) {
	a := newAPI()
	a.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) }
	a.Proposals = &proposalsMock{
		ByConsultantFn: func(_ context.Context, id int64) []models.Proposal {
			return []models.Proposal{{ID: 4, ConsultantID: &id}}
		},
		RenderDocumentFn: func(_ context.Context, id int64, now time.Time) (string, error) {
			if id == 99 {
				return "", store.ErrNotFound
			}
			return "<html>proposta " + now.Format("2006") + "</html>", nil
		},
	}

	rr := serve(a, http.MethodGet, "/api/proposals/consultant/2", "")
	wantStatus(t, rr, http.StatusOK)
	var ps []models.Proposal
	decodeBody(t, rr, &ps)
	if len(ps) != 1 || *ps[0].ConsultantID != 2 {
		t.Fatalf("proposals: %#v", ps)
	}

	rr = serve(a, http.MethodGet, "/api/proposals/4/pdf", "")
	wantStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type = %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "2026") {
		t.Fatalf("body: %s", rr.Body.String())
	}

	wantStatus(t, serve(a, http.MethodGet, "/api/proposals/99/pdf", ""), http.StatusNotFound)
	wantStatus(t, serve(a, http.MethodGet, "/api/proposals/4/xml", ""), http.StatusNotFound)
	wantStatus(t, serve(a, http.MethodGet, "/api/proposals/x/pdf", ""), http.StatusBadRequest)
}

func TestProposals_DeleteAndStatus(t *testing.T) {
	a := newAPI()
	a.Proposals = &proposalsMock{
		DeleteFn:    func(context.Context, int64) error { return nil },
		DeleteAllFn: func(context.Context) error { return nil },
		UpdateStatusFn: func(_ context.Context, id int64, st models.ProposalStatus) (models.Proposal, error) {
			return models.Proposal{ID: id, Status: st}, nil
		},
	}
	wantStatus(t, serve(a, http.MethodDelete, "/api/proposals/1", ""), http.StatusOK)
	wantStatus(t, serve(a, http.MethodDelete, "/api/proposals", ""), http.StatusOK)
	wantStatus(t, serve(a, http.MethodPatch, "/api/proposals/1", `{"status":"sent"}`), http.StatusOK)
	wantStatus(t, serve(a, http.MethodPatch, "/api/proposals/1", `{"status":"archived"}`), http.StatusBadRequest)
}

func TestProposals_StorageFailure500(t *testing.T) {
	a := newAPI()
	a.Proposals = &proposalsMock{DeleteAllFn: func(context.Context) error {
		return &store.StorageError{Op: "rewrite", Kind: "proposals", Err: fmt.Errorf("disk full")}
	}}
	rr := serve(a, http.MethodDelete, "/api/proposals", "")
	wantStatus(t, rr, http.StatusInternalServerError)
	if strings.Contains(rr.Body.String(), "disk full") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
}

// 6) settings - go test -run 'TestSettings_' -v ./internal/handlers -count=1

func TestSettings_RenderMessage(t *testing.T) {
	a := newAPI()
	a.Proposals = &proposalsMock{RenderMessageFn: func(_ context.Context, f message.Fields) string {
		return message.Render("Olá {{companyName}} {{unknown}}", f)
	}}
	rr := serve(a, http.MethodPost, "/api/whatsapp-message", `{"companyName":"ACME"}`)
	wantStatus(t, rr, http.StatusOK)
	var got map[string]string
	decodeBody(t, rr, &got)
	if got["message"] != "Olá ACME {{unknown}}" {
		t.Fatalf("message = %q", got["message"])
	}
}

func TestSettings_DefaultRatesPartial(t *testing.T) {
	a := newAPI()
	a.Proposals = &proposalsMock{SetDefaultRatesFn: func(_ context.Context, p models.Rates) (models.Rates, error) {
		if p.DebitRate != "0.60" || p.PixRate != "" {
			t.Fatalf("partial: %#v", p)
		}
		return models.Rates{PixRate: "0.00", DebitRate: "0.60", CreditRate: "1.01", Credit12xRate: "1.29", AnticipationRate: "2.49"}, nil
	}}
	wantStatus(t, serve(a, http.MethodPost, "/api/settings/default-rates", `{"debitRate":"0.60"}`), http.StatusOK)
	wantStatus(t, serve(a, http.MethodPost, "/api/settings/default-rates", `{"debitRate":"abc"}`), http.StatusBadRequest)
}

func TestSettings_WhatsappTemplate(t *testing.T) {
	a := newAPI()
	var saved string
	a.Proposals = &proposalsMock{
		WhatsappTemplateFn:    func(context.Context) string { return saved },
		SetWhatsappTemplateFn: func(_ context.Context, tpl string) error { saved = tpl; return nil },
	}
	wantStatus(t, serve(a, http.MethodPost, "/api/settings/whatsapp-template", `{"template":"Oi {{consultantName}}"}`), http.StatusOK)
	rr := serve(a, http.MethodGet, "/api/settings/whatsapp-template", "")
	wantStatus(t, rr, http.StatusOK)
	var got map[string]string
	decodeBody(t, rr, &got)
	if got["template"] != "Oi {{consultantName}}" {
		t.Fatalf("template = %q", got["template"])
	}
	wantStatus(t, serve(a, http.MethodPost, "/api/settings/whatsapp-template", `{"template":""}`), http.StatusBadRequest)
}

func TestAPI_EmptyBody400(t *testing.T) {
	rr := serve(newAPI(), http.MethodPost, "/api/leads", "")
	wantStatus(t, rr, http.StatusBadRequest)
	if !strings.Contains(rr.Body.String(), "request body is empty") {
		t.Fatalf("body: %s", rr.Body.String())
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	rr := serve(newAPI(), http.MethodPut, "/api/proposals", "")
	wantStatus(t, rr, http.StatusMethodNotAllowed)
}
