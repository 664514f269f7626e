package http

import (
	"net/http"
	"testing"

	"perplexacare/internal/domain"
)

func TestProfileHandlerGet_EmptyObjectWhenAbsent(t *testing.T) {
	env := setupTestEnv()

	rec := performRequest(env.router, http.MethodGet, "/api/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "{}" {
		t.Fatalf("missing profile should serialize as empty object, got %q", rec.Body.String())
	}
}

func TestProfileHandlerPut_NormalizesLooseInput(t *testing.T) {
	env := setupTestEnv()

	rec := performRequest(env.router, http.MethodPut, "/api/profile", map[string]any{
		"fullName":           "  Ana Test  ",
		"age":                "34",
		"height":             "1.68",
		"weight":             62.5,
		"gender":             "",
		"medicalHistory":     "asthma, hypertension ,  ",
		"currentMedications": []string{"salbutamol"},
		"allergies":          nil,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["fullName"] != "Ana Test" {
		t.Fatalf("full name should be trimmed, got %v", body["fullName"])
	}
	if body["age"] != float64(34) {
		t.Fatalf("string age should parse to number, got %v", body["age"])
	}
	if body["height"] != 1.68 || body["weight"] != 62.5 {
		t.Fatalf("numeric fields mishandled: %v / %v", body["height"], body["weight"])
	}
	if body["gender"] != nil {
		t.Fatalf("empty string should store as null, got %v", body["gender"])
	}
	history, ok := body["medicalHistory"].([]any)
	if !ok || len(history) != 2 || history[0] != "asthma" || history[1] != "hypertension" {
		t.Fatalf("csv list should normalize to trimmed array, got %v", body["medicalHistory"])
	}
	allergies, ok := body["allergies"].([]any)
	if !ok || len(allergies) != 0 {
		t.Fatalf("nil list should normalize to empty array, got %v", body["allergies"])
	}
}

func TestProfileHandlerPut_FullOverwrite(t *testing.T) {
	env := setupTestEnv()

	first := performRequest(env.router, http.MethodPut, "/api/profile", map[string]any{
		"fullName": "Ana",
		"age":      30,
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first save: %d", first.Code)
	}

	// El segundo guardado reemplaza el registro entero: age no se conserva.
	second := performRequest(env.router, http.MethodPut, "/api/profile", map[string]any{
		"fullName": "Ana",
	})
	if second.Code != http.StatusOK {
		t.Fatalf("second save: %d", second.Code)
	}
	body := decodeBody(t, second)
	if body["age"] != nil {
		t.Fatalf("omitted field should overwrite to null, got %v", body["age"])
	}

	rec := performRequest(env.router, http.MethodGet, "/api/profile", nil)
	stored := decodeBody(t, rec)
	if stored["age"] != nil {
		t.Fatalf("stored record should reflect the overwrite, got %v", stored["age"])
	}
}

func TestProfileHandler_GuestIdentityWithoutToken(t *testing.T) {
	env := setupTestEnv()

	rec := performRequest(env.router, http.MethodPut, "/api/profile", map[string]any{
		"fullName": "Guest Person",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := env.profiles.profiles[testGuestUserID]; !ok {
		t.Fatalf("anonymous writes should land on the guest identity")
	}
}

func TestProfileHandler_TokenSelectsUser(t *testing.T) {
	env := setupTestEnv()
	pair, err := env.jwtSvc.GeneratePair(domain.User{ID: "u9", Email: "u9@example.com"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := performAuthedRequest(env.router, http.MethodPut, "/api/profile", map[string]any{
		"fullName": "Real User",
	}, pair.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := env.profiles.profiles["u9"]; !ok {
		t.Fatalf("authed writes should land on the token's user")
	}
	if _, ok := env.profiles.profiles[testGuestUserID]; ok {
		t.Fatalf("guest record must not be touched for authed callers")
	}

	get := performAuthedRequest(env.router, http.MethodGet, "/api/profile", nil, pair.AccessToken)
	body := decodeBody(t, get)
	if body["fullName"] != "Real User" {
		t.Fatalf("authed read should return the user's profile, got %v", body)
	}
}
