package config

import (
	"os"
	"testing"
	"time"
)

func TestGetWeatherstackAccessKey(t *testing.T) {
	expectedKey := "test_access_key_123"
	os.Setenv("WEATHERSTACK_ACCESS_KEY", expectedKey)
	defer os.Unsetenv("WEATHERSTACK_ACCESS_KEY")

	result := GetWeatherstackAccessKey()
	if result != expectedKey {
		t.Errorf("Expected access key %s, got %s", expectedKey, result)
	}

	os.Unsetenv("WEATHERSTACK_ACCESS_KEY")
	result = GetWeatherstackAccessKey()
	if result != "" {
		t.Errorf("Expected empty string, got %s", result)
	}
}

func TestGetWeatherbitAPIKey(t *testing.T) {
	expectedKey := "test_wb_key_456"
	os.Setenv("WEATHERBIT_API_KEY", expectedKey)
	defer os.Unsetenv("WEATHERBIT_API_KEY")

	result := GetWeatherbitAPIKey()
	if result != expectedKey {
		t.Errorf("Expected API key %s, got %s", expectedKey, result)
	}
}

func TestGetRedisAddr(t *testing.T) {
	result := GetRedisAddr()
	if result != "localhost:6379" {
		t.Errorf("Expected default Redis addr localhost:6379, got %s", result)
	}
}

func TestProviderURLs(t *testing.T) {
	// Test binaries merge config_test.yaml over config.yaml.
	if got := GetWeatherstackURL(); got != "http://localhost:9090/weatherstack" {
		t.Errorf("Unexpected weatherstack URL %s", got)
	}
	if got := GetWeatherbitURL(); got != "http://localhost:9090/weatherbit" {
		t.Errorf("Unexpected weatherbit URL %s", got)
	}
	if got := GetOpenMeteoURL(); got != "http://localhost:9090/openmeteo" {
		t.Errorf("Unexpected open-meteo URL %s", got)
	}
}

func TestGetSecondarySource(t *testing.T) {
	if got := GetSecondarySource(); got != "simulated" {
		t.Errorf("Expected secondary source simulated, got %s", got)
	}
}

func TestGetServerPort(t *testing.T) {
	want := "8081"
	got := GetServerPort()
	if got != want {
		t.Errorf("Expected server port %s, got %s", want, got)
	}
}

func TestGetServerTimeout(t *testing.T) {
	want := "2s"
	got := GetServerTimeout("read_timeout")
	if got != want {
		t.Errorf("Expected read_timeout %s, got %s", want, got)
	}
}

func TestGetProviderRate_Defaults(t *testing.T) {
	rps, burst := GetProviderRate("weatherstack")
	if rps != 1 || burst != 2 {
		t.Errorf("Expected default rate 1/2, got %v/%v", rps, burst)
	}
}

func TestGetRateLimits_Defaults(t *testing.T) {
	perMinute, perLocation := GetRateLimits()
	if perMinute != 10 {
		t.Errorf("Expected per-minute limit 10, got %v", perMinute)
	}
	if perLocation != 2 {
		t.Errorf("Expected per-location limit 2, got %v", perLocation)
	}
}

func TestGetSchedulerInterval_Default(t *testing.T) {
	if got := GetSchedulerInterval(); got != 30*time.Minute {
		t.Errorf("Expected default interval 30m, got %v", got)
	}
}

func TestGetSchedulerEnabled(t *testing.T) {
	if GetSchedulerEnabled() {
		t.Error("Expected scheduler disabled in test config")
	}
}

func TestReloadConfigForTest(t *testing.T) {
	// Should not panic or error
	ReloadConfigForTest()
}

func TestGetProjectRoot_MissingGoMod(t *testing.T) {
	_ = os.Rename("../../go.mod", "../../go.mod.bak")
	defer os.Rename("../../go.mod.bak", "../../go.mod")
	_, err := getProjectRoot()
	if err == nil {
		t.Error("Expected error for missing go.mod, got nil")
	}
}
