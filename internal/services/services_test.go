package services

import "testing"

func TestLookupMySQL(t *testing.T) {
	svc := Lookup(3306)
	if svc == nil {
		t.Fatal("expected a service for port 3306")
	}
	if svc.Name != "MySQL" {
		t.Errorf("Name = %q, want MySQL", svc.Name)
	}
	if svc.Risk != RiskCritical {
		t.Errorf("Risk = %v, want RiskCritical", svc.Risk)
	}
}

func TestLookupUnknown(t *testing.T) {
	if svc := Lookup(54321); svc != nil {
		t.Errorf("expected nil for unknown port, got %+v", svc)
	}
}

func TestClassifyByPort(t *testing.T) {
	label := Classify(5432, "")
	if label == nil {
		t.Fatal("expected a label for port 5432")
	}
	if label.Name != "PostgreSQL" || !label.Critical {
		t.Errorf("got %+v, want critical PostgreSQL", label)
	}
}

// High risk and above carries the critical flag; lower risks do not.
func TestClassifyRiskBoundary(t *testing.T) {
	if label := Classify(6379, ""); label == nil || !label.Critical {
		t.Errorf("Redis should classify critical, got %+v", label)
	}
	if label := Classify(3000, ""); label == nil || label.Critical {
		t.Errorf("dev server should not be critical, got %+v", label)
	}
}

func TestClassifyByNameHint(t *testing.T) {
	// Unknown port, but the process name matches a hint. Name matches are
	// never critical on their own.
	label := Classify(54321, "redis-server")
	if label == nil {
		t.Fatal("expected a label from the name hint")
	}
	if label.Name != "Redis" {
		t.Errorf("Name = %q, want Redis", label.Name)
	}
	if label.Critical {
		t.Error("hint-only classification must not be critical")
	}
}

func TestClassifyUnknownIsNil(t *testing.T) {
	if label := Classify(54321, "my-random-binary"); label != nil {
		t.Errorf("expected nil, got %+v", label)
	}
}

func TestShortName(t *testing.T) {
	if got := ShortName(5432); got != "PostgreSQL" {
		t.Errorf("ShortName(5432) = %q", got)
	}
	if got := ShortName(11434); got != "Ollama" {
		t.Errorf("ShortName(11434) = %q", got)
	}
	if got := ShortName(65432); got != "" {
		t.Errorf("ShortName(65432) = %q, want empty", got)
	}
}

func TestIsCriticalImage(t *testing.T) {
	if !IsCriticalImage("postgres:15-alpine") {
		t.Error("postgres image should be critical")
	}
	if !IsCriticalImage("mysql:8.0") {
		t.Error("mysql image should be critical")
	}
	if IsCriticalImage("node:20-alpine") {
		t.Error("node image should not be critical")
	}
	if IsCriticalImage("nginx:latest") {
		t.Error("nginx image should not be critical")
	}
}
