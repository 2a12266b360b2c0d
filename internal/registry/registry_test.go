package registry

/*

go test -run 'TestLookup_' -v ./internal/registry -count=1

*/

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/cnpj/11222333000181" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status":"OK","cnpj":"11.222.333/0001-81","nome":"ACME COMERCIO LTDA","fantasia":"ACME",
			"situacao":"ATIVA","porte":"MICRO EMPRESA","abertura":"01/02/2010",
			"atividade_principal":[{"code":"47.51-2-01","text":"Comércio varejista"}]
		}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL+"/v1/cnpj/", time.Second).Lookup(context.Background(), "11222333000181")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := Record{CNPJ: "11222333000181", Name: "ACME COMERCIO LTDA", Status: "ATIVA", Size: "MICRO EMPRESA", Activity: "Comércio varejista", OpenDate: "01/02/2010"}
	if rec != want {
		t.Fatalf("got %#v\nwant %#v", rec, want)
	}
}

func TestLookup_FallsBackToFantasia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","cnpj":"11222333000181","nome":"","fantasia":"ACME"}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL, time.Second).Lookup(context.Background(), "11222333000181")
	if err != nil || rec.Name != "ACME" || rec.Activity != "" {
		t.Fatalf("rec=%#v err=%v", rec, err)
	}
}

func TestLookup_NotFound(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status ERROR": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ERROR","message":"CNPJ inválido"}`))
		},
		"http 404": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewClient(srv.URL, time.Second).Lookup(context.Background(), "11222333000181")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestLookup_Upstream(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"rate limited": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"garbage body": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		},
		"slow": func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"status":"OK"}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewClient(srv.URL, 100*time.Millisecond).Lookup(context.Background(), "11222333000181")
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("want ErrUpstream, got %v", err)
			}
		})
	}
}

func TestLookup_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	_, err := NewClient(url, time.Second).Lookup(context.Background(), "11222333000181")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("want ErrUpstream, got %v", err)
	}
}
