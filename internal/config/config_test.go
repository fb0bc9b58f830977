package config

import (
	"os"
	"testing"
)

func withServiceEnv(t *testing.T) {
	t.Helper()
	t.Setenv("USERSERVICE_HOST", "userservice.internal")
	t.Setenv("USERSERVICE_PORT", "9001")
	t.Setenv("INVSERVICE_HOST", "invservice.internal")
	t.Setenv("INVSERVICE_PORT", "9002")
}

func TestLoadAppliesDefaultsAndFlags(t *testing.T) {
	withServiceEnv(t)

	cfg, err := Load([]string{"--port-master=12345", "--log-packets"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PortMaster != 12345 {
		t.Errorf("PortMaster = %d, want 12345", cfg.PortMaster)
	}
	if !cfg.LogPackets {
		t.Error("LogPackets = false, want true")
	}
	if cfg.PortHolepunch != 30002 {
		t.Errorf("PortHolepunch = %d, want default 30002", cfg.PortHolepunch)
	}
	if cfg.UserServiceBaseURL() != "http://userservice.internal:9001" {
		t.Errorf("UserServiceBaseURL = %q", cfg.UserServiceBaseURL())
	}
}

func TestLoadFailsFastWithoutUserServiceEnv(t *testing.T) {
	os.Unsetenv("USERSERVICE_HOST")
	os.Unsetenv("USERSERVICE_PORT")
	t.Setenv("INVSERVICE_HOST", "invservice.internal")
	t.Setenv("INVSERVICE_PORT", "9002")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected an error when USERSERVICE_HOST/PORT are unset")
	}
}

func TestLoadMergesConfigFileBelowFlagsAndEnv(t *testing.T) {
	withServiceEnv(t)

	dir := t.TempDir()
	path := dir + "/config.json"
	if err := os.WriteFile(path, []byte(`{"port-master": 5000, "ops_api_addr": "0.0.0.0:9000"}`), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load([]string{"--config-file=" + path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PortMaster != 5000 {
		t.Errorf("PortMaster = %d, want 5000 from config file", cfg.PortMaster)
	}
	if cfg.OpsAPIAddr != "0.0.0.0:9000" {
		t.Errorf("OpsAPIAddr = %q, want value from config file", cfg.OpsAPIAddr)
	}

	cfg, err = Load([]string{"--config-file=" + path, "--port-master=6000"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PortMaster != 6000 {
		t.Errorf("PortMaster = %d, want 6000: an explicit flag must win over the config file", cfg.PortMaster)
	}
}

func TestLoadTreatsMissingConfigFileAsOptional(t *testing.T) {
	withServiceEnv(t)

	if _, err := Load([]string{"--config-file=/nonexistent/config.json"}); err != nil {
		t.Fatalf("Load: %v, want no error for a missing optional config file", err)
	}
}

func TestLoadFailsFastWithInvalidPort(t *testing.T) {
	t.Setenv("USERSERVICE_HOST", "userservice.internal")
	t.Setenv("USERSERVICE_PORT", "not-a-port")
	t.Setenv("INVSERVICE_HOST", "invservice.internal")
	t.Setenv("INVSERVICE_PORT", "9002")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
}
