package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Clear any existing env vars that might interfere
	envVars := []string{
		"APP_NAME", "APP_ENVIRONMENT", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT",
		"DATABASE_HOST", "DATABASE_PORT", "DATABASE_DBNAME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_SUBDOMAIN_TTL",
		"KAFKA_BROKERS", "KAFKA_TENANT_TOPIC",
		"JWT_SECRET",
		"TENANCY_SINGLE_DOMAIN_MULTITENANCY", "TENANCY_MAIN_TENANT_SUBDOMAIN",
		"TENANCY_LEGAL_CONTENT_CHANGES_BY_SINGLE_TENANT_ADMINS_ALLOWED",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "tenant-service" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "tenant-service")
	}

	if cfg.App.Environment != "development" {
		t.Errorf("App.Environment = %q, want %q", cfg.App.Environment, "development")
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}

	if cfg.Redis.SubdomainTTL != 10*time.Minute {
		t.Errorf("Redis.SubdomainTTL = %v, want %v", cfg.Redis.SubdomainTTL, 10*time.Minute)
	}

	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "localhost:9092" {
		t.Errorf("Kafka.Brokers = %v, want [localhost:9092]", cfg.Kafka.Brokers)
	}

	if cfg.Kafka.TenantTopic != "tenant.events" {
		t.Errorf("Kafka.TenantTopic = %q, want %q", cfg.Kafka.TenantTopic, "tenant.events")
	}

	if !cfg.Tenancy.LegalContentChangesBySingleTenantAdminsAllowed {
		t.Error("Tenancy.LegalContentChangesBySingleTenantAdminsAllowed = false, want true")
	}

	if cfg.Tenancy.SingleDomainMultitenancy {
		t.Error("Tenancy.SingleDomainMultitenancy = true, want false")
	}
}

func TestLoad_WithEnvOverride(t *testing.T) {
	os.Setenv("APP_NAME", "test-app")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DATABASE_HOST", "tenant-db.example.com")
	os.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	os.Setenv("TENANCY_SINGLE_DOMAIN_MULTITENANCY", "true")
	os.Setenv("TENANCY_MAIN_TENANT_SUBDOMAIN", "main")
	defer func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DATABASE_HOST")
		os.Unsetenv("KAFKA_BROKERS")
		os.Unsetenv("TENANCY_SINGLE_DOMAIN_MULTITENANCY")
		os.Unsetenv("TENANCY_MAIN_TENANT_SUBDOMAIN")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.App.Name != "test-app" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "test-app")
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}

	if cfg.Database.Host != "tenant-db.example.com" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "tenant-db.example.com")
	}

	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Kafka.Brokers = %v, want 2 brokers", cfg.Kafka.Brokers)
	}

	if !cfg.Tenancy.SingleDomainMultitenancy || cfg.Tenancy.MainTenantSubdomain != "main" {
		t.Errorf("Tenancy = %+v, want single domain enabled with main subdomain", cfg.Tenancy)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if dsn := cfg.DSN(); dsn != expected {
		t.Errorf("DSN() = %q, want %q", dsn, expected)
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{
		Host: "redis.example.com",
		Port: 6380,
	}

	expected := "redis.example.com:6380"
	if addr := cfg.Addr(); addr != expected {
		t.Errorf("Addr() = %q, want %q", addr, expected)
	}
}

func TestConfig_Validate(t *testing.T) {
	validDB := DatabaseConfig{Host: "localhost", DBName: "tenants"}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: validDB,
				JWT:      JWTConfig{Secret: "secret"},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				App:      AppConfig{Name: "", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: validDB,
				JWT:      JWTConfig{Secret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: -1},
				Database: validDB,
				JWT:      JWTConfig{Secret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "port too high",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 70000},
				Database: validDB,
				JWT:      JWTConfig{Secret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "missing database host",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{DBName: "tenants"},
				JWT:      JWTConfig{Secret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "missing JWT secret",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: validDB,
				JWT:      JWTConfig{Secret: ""},
			},
			wantErr: true,
		},
		{
			name: "default JWT secret in production",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "production"},
				Server:   ServerConfig{Port: 8080},
				Database: validDB,
				JWT:      JWTConfig{Secret: "your-secret-key-change-in-production"},
			},
			wantErr: true,
		},
		{
			name: "single domain without main subdomain",
			cfg: Config{
				App:      AppConfig{Name: "test", Environment: "development"},
				Server:   ServerConfig{Port: 8080},
				Database: validDB,
				JWT:      JWTConfig{Secret: "secret"},
				Tenancy:  TenancyConfig{SingleDomainMultitenancy: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}

	cfg.App.Environment = "development"
	if cfg.IsProduction() {
		t.Error("IsProduction() = true, want false")
	}
}
