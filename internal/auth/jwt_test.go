package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("st-1", "student", "housing-test", "key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	claims, err := Parse(pair.AccessToken, "key", "housing-test")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if claims.Subject != "st-1" || claims.Role != "student" {
		t.Errorf("claims = %q/%q, want st-1/student", claims.Subject, claims.Role)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("st-1", "student", "housing-test", "key", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "other-key", "housing-test"); err == nil {
		t.Error("token signed with different key accepted")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("st-1", "student", "someone-else", "key", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "key", "housing-test"); err == nil {
		t.Error("token with wrong issuer accepted")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("st-1", "student", "housing-test", "key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "key", "housing-test"); err == nil {
		t.Error("expired token accepted")
	}
}
