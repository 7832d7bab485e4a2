package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/config"
	"github.com/Loran-38/anonyjud/internal/document"
	"github.com/Loran-38/anonyjud/internal/logger"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Server.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	s, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestAnonymizeEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	entities := []anonymizer.Entity{{Name: "HUISSOUD", FirstName: "Claire"}}

	t.Run("round trip through both endpoints", func(t *testing.T) {
		rec := postJSON(t, s, "/api/anonymize", AnonymizeRequest{
			Text:     "Madame Claire HUISSOUD est convoquée.",
			Entities: entities,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("anonymize status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp AnonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if strings.Contains(resp.Text, "HUISSOUD") || strings.Contains(resp.Text, "Claire") {
			t.Fatalf("anonymized text still carries entity values: %q", resp.Text)
		}
		if !strings.Contains(resp.Text, "NOM1") || !strings.Contains(resp.Text, "PRENOM1") {
			t.Fatalf("expected NOM1 and PRENOM1 in %q", resp.Text)
		}

		rec = postJSON(t, s, "/api/deanonymize", DeanonymizeRequest{
			Text:    resp.Text,
			Mapping: resp.Mapping,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("deanonymize status = %d, body %s", rec.Code, rec.Body.String())
		}
		var restored DeanonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &restored); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if restored.Text != "Madame Claire HUISSOUD est convoquée." {
			t.Fatalf("round trip mismatch: %q", restored.Text)
		}
	})

	t.Run("missing text rejected", func(t *testing.T) {
		rec := postJSON(t, s, "/api/anonymize", AnonymizeRequest{Entities: entities})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/anonymize", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAnonymizeBlocksEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("blocks share one tag sequence", func(t *testing.T) {
		rec := postJSON(t, s, "/api/anonymize/blocks", BlocksAnonymizeRequest{
			Blocks: []document.Block{
				{Index: 0, Text: "Monsieur DURAND comparaît."},
				{Index: 1, Text: "DURAND conteste les faits."},
			},
			Entities: []anonymizer.Entity{{Name: "DURAND"}},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp BlocksAnonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Blocks) != 2 {
			t.Fatalf("blocks = %d, want 2", len(resp.Blocks))
		}
		for _, b := range resp.Blocks {
			if !strings.Contains(b.Text, "NOM1") {
				t.Errorf("block %d missing shared tag NOM1: %q", b.Index, b.Text)
			}
		}
		if resp.Mapping.Len() != 1 {
			t.Errorf("mapping size = %d, want 1", resp.Mapping.Len())
		}
	})

	t.Run("empty blocks rejected", func(t *testing.T) {
		rec := postJSON(t, s, "/api/anonymize/blocks", BlocksAnonymizeRequest{
			Entities: []anonymizer.Entity{{Name: "DURAND"}},
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDeanonymizeEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("missing mapping rejected", func(t *testing.T) {
		rec := postJSON(t, s, "/api/deanonymize", DeanonymizeRequest{Text: "NOM1"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("mapping accepted in wire form", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/deanonymize",
			strings.NewReader(`{"text":"Maître NOM1 représente PRENOM1 NOM1.","mapping":{"NOM1":"MARTIN","PRENOM1":"Paul"}}`))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp DeanonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Text != "Maître MARTIN représente Paul MARTIN." {
			t.Fatalf("restored = %q", resp.Text)
		}
	})
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 1 << 20
	})

	post := func(t *testing.T, body []byte) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	pdf := func(extra string) []byte {
		b := []byte("%PDF-1.7\n" + extra)
		for len(b) < minPDFBytes {
			b = append(b, '\n')
		}
		return b
	}

	t.Run("valid PDF accepted", func(t *testing.T) {
		rec := post(t, pdf("1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		rec := post(t, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("non-PDF rejected", func(t *testing.T) {
		rec := post(t, bytes.Repeat([]byte("plain text "), 20))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("encrypted PDF rejected", func(t *testing.T) {
		rec := post(t, pdf("trailer\n<< /Encrypt 5 0 R >>"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp ValidateResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Valid || !strings.Contains(resp.Error, "encrypted") {
			t.Fatalf("resp = %+v", resp)
		}
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		rec := post(t, bytes.Repeat([]byte("A"), int(s.config.Server.MaxUploadBytes)+1))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", rec.Code)
		}
	})
}

func TestFitEndpoint(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Render.MinFontSize = 4
		cfg.Render.ShrinkStep = 0.5
		cfg.Render.DefaultFontPt = 11
	})

	t.Run("wide box keeps size", func(t *testing.T) {
		rec := postJSON(t, s, "/api/fit", FitRequest{
			Text: "NOM1", Font: "Arial", Bold: true, Size: 11, BoxWidth: 200,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp FitResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Font != "Helvetica-Bold" {
			t.Errorf("font = %q, want Helvetica-Bold", resp.Font)
		}
		if resp.Size != 11 || resp.Floored {
			t.Errorf("resp = %+v, want size 11 and no floor", resp)
		}
	})

	t.Run("narrow box floors", func(t *testing.T) {
		rec := postJSON(t, s, "/api/fit", FitRequest{
			Text: "ADRESSE1", Font: "Helvetica", Size: 11, BoxWidth: 1,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp FitResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Size != 4 || !resp.Floored {
			t.Errorf("resp = %+v, want the configured 4pt floor reported", resp)
		}
	})

	t.Run("missing text rejected", func(t *testing.T) {
		rec := postJSON(t, s, "/api/fit", FitRequest{Font: "Arial", BoxWidth: 100})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("non-positive box rejected", func(t *testing.T) {
		rec := postJSON(t, s, "/api/fit", FitRequest{Text: "NOM1", Font: "Arial"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestConvertEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("empty upload rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		big := bytes.Repeat([]byte("A"), int(s.config.Server.MaxUploadBytes)+1)
		req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(big))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", rec.Code)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerSec = 0.001
		cfg.Server.RateLimit.Burst = 1
	})

	body := AnonymizeRequest{Text: "rien à cacher"}

	first := postJSON(t, s, "/api/anonymize", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	second := postJSON(t, s, "/api/anonymize", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/info"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s content type = %q", path, ct)
		}
	}
}
